package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "smartbiz/internal/errors"
	"smartbiz/internal/httpjson"
)

type Controller struct {
	service    *Service
	middleware *Middleware
	logger     *zap.Logger
}

func NewController(service *Service, middleware *Middleware, logger *zap.Logger) *Controller {
	return &Controller{service: service, middleware: middleware, logger: logger}
}

func (c *Controller) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/register", c.handleRegister)
	r.Post("/login", c.handleLogin)
	r.Post("/forgot-password", c.handleForgotPassword)
	r.Post("/reset-password", c.handleResetPassword)
	r.Group(func(r chi.Router) {
		r.Use(c.middleware.RequireAuth)
		r.Get("/me", c.handleMe)
	})
	return r
}

type registerRequest struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	Company   *string `json:"company"`
	Phone     *string `json:"phone"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

func (c *Controller) handleRegister(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req registerRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, logger, err)
		return
	}

	if err := validateRegister(req); err != nil {
		httpjson.Error(w, logger, err)
		return
	}

	user, token, err := c.service.Register(r.Context(), RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Company:   req.Company,
		Phone:     req.Phone,
	})
	if err != nil {
		httpjson.Error(w, logger, err)
		return
	}

	httpjson.OK(w, logger, http.StatusCreated, map[string]any{
		"user":  user,
		"token": token,
	})
}

func (c *Controller) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	if req.Email == "" || req.Password == "" {
		httpjson.Error(w, c.logger, apperrors.NewValidationError("email and password are required"))
		return
	}

	user, token, err := c.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	httpjson.OK(w, c.logger, http.StatusOK, map[string]any{
		"user":  user,
		"token": token,
	})
}

func (c *Controller) handleMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		httpjson.Error(w, c.logger, apperrors.NewPermissionError("missing bearer token"))
		return
	}

	user, err := c.service.Me(r.Context(), claims.Subject)
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}
	httpjson.OK(w, c.logger, http.StatusOK, user)
}

func (c *Controller) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	if req.Email == "" {
		httpjson.Error(w, c.logger, apperrors.NewValidationError("email is required"))
		return
	}

	if err := c.service.ForgotPassword(r.Context(), req.Email); err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	httpjson.OKMessage(w, c.logger, http.StatusOK,
		"If the address is registered, a reset code has been sent", nil)
}

func (c *Controller) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	var details []apperrors.ValidationDetail
	if req.Email == "" {
		details = append(details, apperrors.ValidationDetail{Field: "email", Message: "email is required"})
	}
	if req.Code == "" {
		details = append(details, apperrors.ValidationDetail{Field: "code", Message: "code is required"})
	}
	if len(req.NewPassword) < 8 {
		details = append(details, apperrors.ValidationDetail{Field: "new_password", Message: "new_password must be at least 8 characters"})
	}
	if len(details) > 0 {
		httpjson.Error(w, c.logger, apperrors.NewValidationError("validation failed", details...))
		return
	}

	if err := c.service.ResetPassword(r.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	httpjson.OKMessage(w, c.logger, http.StatusOK, "Password updated successfully", nil)
}

func validateRegister(req registerRequest) error {
	var details []apperrors.ValidationDetail

	if req.FirstName == "" {
		details = append(details, apperrors.ValidationDetail{
			Field: "first_name", Message: "first_name is required",
		})
	}
	if req.LastName == "" {
		details = append(details, apperrors.ValidationDetail{
			Field: "last_name", Message: "last_name is required",
		})
	}
	if req.Email == "" {
		details = append(details, apperrors.ValidationDetail{
			Field: "email", Message: "email is required",
		})
	}
	if len(req.Password) < 8 {
		details = append(details, apperrors.ValidationDetail{
			Field: "password", Message: "password must be at least 8 characters",
		})
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}
