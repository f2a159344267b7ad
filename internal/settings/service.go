package settings

import (
	"context"

	"go.uber.org/zap"

	"smartbiz/internal/domain"
)

type Repository interface {
	FindByUserID(ctx context.Context, userID string) (*domain.UserSettings, error)
	Upsert(ctx context.Context, s *domain.UserSettings) error
}

type Service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Get returns the saved settings, falling back to defaults for users who
// never touched theirs.
func (s *Service) Get(ctx context.Context, userID string) (*domain.UserSettings, error) {
	saved, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if saved == nil {
		defaults := domain.DefaultUserSettings(userID)
		return &defaults, nil
	}
	return saved, nil
}

type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Email     *string
	Company   *string
	Phone     *string
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, in ProfileUpdate) (*domain.UserSettings, error) {
	current, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.FirstName != nil {
		current.FirstName = in.FirstName
	}
	if in.LastName != nil {
		current.LastName = in.LastName
	}
	if in.Email != nil {
		current.Email = in.Email
	}
	if in.Company != nil {
		current.Company = in.Company
	}
	if in.Phone != nil {
		current.Phone = in.Phone
	}

	return s.save(ctx, current)
}

type NotificationsUpdate struct {
	EmailNotifications *bool
	PushNotifications  *bool
	OrderUpdates       *bool
	MarketingEmails    *bool
	WeeklyReports      *bool
}

func (s *Service) UpdateNotifications(ctx context.Context, userID string, in NotificationsUpdate) (*domain.UserSettings, error) {
	current, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.EmailNotifications != nil {
		current.EmailNotifications = *in.EmailNotifications
	}
	if in.PushNotifications != nil {
		current.PushNotifications = *in.PushNotifications
	}
	if in.OrderUpdates != nil {
		current.OrderUpdates = *in.OrderUpdates
	}
	if in.MarketingEmails != nil {
		current.MarketingEmails = *in.MarketingEmails
	}
	if in.WeeklyReports != nil {
		current.WeeklyReports = *in.WeeklyReports
	}

	return s.save(ctx, current)
}

type SecurityUpdate struct {
	TwoFactorAuth  *bool
	SessionTimeout *string
	PasswordExpiry *string
}

func (s *Service) UpdateSecurity(ctx context.Context, userID string, in SecurityUpdate) (*domain.UserSettings, error) {
	current, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.TwoFactorAuth != nil {
		current.TwoFactorAuth = *in.TwoFactorAuth
	}
	if in.SessionTimeout != nil {
		current.SessionTimeout = *in.SessionTimeout
	}
	if in.PasswordExpiry != nil {
		current.PasswordExpiry = *in.PasswordExpiry
	}

	return s.save(ctx, current)
}

type PreferencesUpdate struct {
	Language *string
	Timezone *string
	Theme    *string
}

func (s *Service) UpdatePreferences(ctx context.Context, userID string, in PreferencesUpdate) (*domain.UserSettings, error) {
	current, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Language != nil {
		current.Language = *in.Language
	}
	if in.Timezone != nil {
		current.Timezone = *in.Timezone
	}
	if in.Theme != nil {
		current.Theme = *in.Theme
	}

	return s.save(ctx, current)
}

func (s *Service) save(ctx context.Context, settings *domain.UserSettings) (*domain.UserSettings, error) {
	if err := s.repo.Upsert(ctx, settings); err != nil {
		return nil, err
	}

	s.logger.Info("user settings saved", zap.String("userId", settings.UserID))
	return s.repo.FindByUserID(ctx, settings.UserID)
}
