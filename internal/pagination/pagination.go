package pagination

import (
	"net/http"
	"strconv"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type Page struct {
	Number int
	Size   int
}

type Meta struct {
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
	Pages   int64 `json:"pages"`
	HasNext bool  `json:"has_next"`
	HasPrev bool  `json:"has_prev"`
}

// FromRequest reads page/per_page query params, clamping to sane bounds.
func FromRequest(r *http.Request) Page {
	page := intParam(r, "page", 1)
	if page < 1 {
		page = 1
	}

	size := intParam(r, "per_page", DefaultPageSize)
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	return Page{Number: page, Size: size}
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

func (p Page) Limit() int {
	return p.Size
}

func (p Page) MetaFor(total int64) Meta {
	pages := (total + int64(p.Size) - 1) / int64(p.Size)
	return Meta{
		Page:    p.Number,
		PerPage: p.Size,
		Total:   total,
		Pages:   pages,
		HasNext: int64(p.Offset()+p.Size) < total,
		HasPrev: p.Number > 1,
	}
}

func intParam(r *http.Request, name string, def int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
