package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromRequest_Defaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/products", nil)
	p := FromRequest(r)

	assert.Equal(t, 1, p.Number)
	assert.Equal(t, DefaultPageSize, p.Size)
	assert.Equal(t, 0, p.Offset())
}

func TestFromRequest_Explicit(t *testing.T) {
	r := httptest.NewRequest("GET", "/products?page=3&per_page=25", nil)
	p := FromRequest(r)

	assert.Equal(t, 3, p.Number)
	assert.Equal(t, 25, p.Size)
	assert.Equal(t, 50, p.Offset())
}

func TestFromRequest_Clamped(t *testing.T) {
	r := httptest.NewRequest("GET", "/products?page=-1&per_page=9999", nil)
	p := FromRequest(r)

	assert.Equal(t, 1, p.Number)
	assert.Equal(t, MaxPageSize, p.Size)
}

func TestMetaFor(t *testing.T) {
	p := Page{Number: 2, Size: 10}
	meta := p.MetaFor(35)

	assert.Equal(t, int64(35), meta.Total)
	assert.Equal(t, int64(4), meta.Pages)
	assert.True(t, meta.HasNext)
	assert.True(t, meta.HasPrev)

	last := Page{Number: 4, Size: 10}.MetaFor(35)
	assert.False(t, last.HasNext)
	assert.True(t, last.HasPrev)
}
