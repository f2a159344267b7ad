package settings

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"smartbiz/internal/auth"
	apperrors "smartbiz/internal/errors"
	"smartbiz/internal/httpjson"
)

type Controller struct {
	service *Service
	logger  *zap.Logger
}

func NewController(service *Service, logger *zap.Logger) *Controller {
	return &Controller{service: service, logger: logger}
}

// Routes must be mounted behind auth middleware; every handler reads the
// caller from the request context.
func (c *Controller) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", c.handleGet)
	r.Put("/profile", c.handleUpdateProfile)
	r.Put("/notifications", c.handleUpdateNotifications)
	r.Put("/security", c.handleUpdateSecurity)
	r.Put("/preferences", c.handleUpdatePreferences)
	return r
}

func (c *Controller) callerID(r *http.Request) (string, error) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		return "", apperrors.NewPermissionError("authentication required")
	}
	return claims.Subject, nil
}

func (c *Controller) handleGet(w http.ResponseWriter, r *http.Request) {
	userID, err := c.callerID(r)
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	settings, err := c.service.Get(r.Context(), userID)
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}
	httpjson.OK(w, c.logger, http.StatusOK, settings)
}

type profileRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Company   *string `json:"company"`
	Phone     *string `json:"phone"`
}

func (c *Controller) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := c.callerID(r)
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	var req profileRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	settings, err := c.service.UpdateProfile(r.Context(), userID, ProfileUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Company:   req.Company,
		Phone:     req.Phone,
	})
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	httpjson.OKMessage(w, c.logger, http.StatusOK, "Profile settings updated", settings)
}

type notificationsRequest struct {
	EmailNotifications *bool `json:"email_notifications"`
	PushNotifications  *bool `json:"push_notifications"`
	OrderUpdates       *bool `json:"order_updates"`
	MarketingEmails    *bool `json:"marketing_emails"`
	WeeklyReports      *bool `json:"weekly_reports"`
}

func (c *Controller) handleUpdateNotifications(w http.ResponseWriter, r *http.Request) {
	userID, err := c.callerID(r)
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	var req notificationsRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	settings, err := c.service.UpdateNotifications(r.Context(), userID, NotificationsUpdate{
		EmailNotifications: req.EmailNotifications,
		PushNotifications:  req.PushNotifications,
		OrderUpdates:       req.OrderUpdates,
		MarketingEmails:    req.MarketingEmails,
		WeeklyReports:      req.WeeklyReports,
	})
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	httpjson.OKMessage(w, c.logger, http.StatusOK, "Notification settings updated", settings)
}

type securityRequest struct {
	TwoFactorAuth  *bool   `json:"two_factor_auth"`
	SessionTimeout *string `json:"session_timeout"`
	PasswordExpiry *string `json:"password_expiry"`
}

func (c *Controller) handleUpdateSecurity(w http.ResponseWriter, r *http.Request) {
	userID, err := c.callerID(r)
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	var req securityRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	settings, err := c.service.UpdateSecurity(r.Context(), userID, SecurityUpdate{
		TwoFactorAuth:  req.TwoFactorAuth,
		SessionTimeout: req.SessionTimeout,
		PasswordExpiry: req.PasswordExpiry,
	})
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	httpjson.OKMessage(w, c.logger, http.StatusOK, "Security settings updated", settings)
}

type preferencesRequest struct {
	Language *string `json:"language"`
	Timezone *string `json:"timezone"`
	Theme    *string `json:"theme"`
}

func (c *Controller) handleUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	userID, err := c.callerID(r)
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	var req preferencesRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	settings, err := c.service.UpdatePreferences(r.Context(), userID, PreferencesUpdate{
		Language: req.Language,
		Timezone: req.Timezone,
		Theme:    req.Theme,
	})
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	httpjson.OKMessage(w, c.logger, http.StatusOK, "Preference settings updated", settings)
}
