package auth

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"smartbiz/internal/domain"
	apperrors "smartbiz/internal/errors"
	"smartbiz/internal/notifier"
)

type Repository interface {
	FindUserByID(ctx context.Context, id string) (*domain.User, error)
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	InsertUser(ctx context.Context, u *domain.User) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	TouchLastLogin(ctx context.Context, userID string, at time.Time) error
	InsertOTP(ctx context.Context, otp *domain.PasswordResetOTP) error
	LatestOTP(ctx context.Context, email string) (*domain.PasswordResetOTP, error)
	MarkOTPUsed(ctx context.Context, id string) error
}

type Service struct {
	repo      Repository
	issuer    *TokenIssuer
	otpWindow time.Duration
	publisher notifier.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(repo Repository, issuer *TokenIssuer, otpWindow time.Duration, publisher notifier.Publisher, logger *zap.Logger) *Service {
	return &Service{
		repo:      repo,
		issuer:    issuer,
		otpWindow: otpWindow,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Company   *string
	Phone     *string
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, string, error) {
	taken, err := s.repo.EmailExists(ctx, in.Email)
	if err != nil {
		return nil, "", err
	}
	if taken {
		return nil, "", apperrors.NewConflictError("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", apperrors.NewInternalError("hashing password", err)
	}

	u := &domain.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: string(hash),
		Company:      in.Company,
		Phone:        in.Phone,
		Role:         domain.RoleUser,
		IsActive:     true,
	}

	if err := s.repo.InsertUser(ctx, u); err != nil {
		return nil, "", err
	}

	token, err := s.issuer.Issue(u, s.now())
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("user registered", zap.String("userId", u.ID))
	s.publishEvent(ctx, "user_registered", u)

	return u, token, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	u, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); ok {
			return nil, "", apperrors.NewPermissionError("invalid email or password")
		}
		return nil, "", err
	}

	if !u.IsActive {
		return nil, "", apperrors.NewPermissionError("account is deactivated")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, "", apperrors.NewPermissionError("invalid email or password")
	}

	now := s.now()
	if err := s.repo.TouchLastLogin(ctx, u.ID, now); err != nil {
		s.logger.Warn("updating last login failed", zap.Error(err))
	}

	token, err := s.issuer.Issue(u, now)
	if err != nil {
		return nil, "", err
	}

	return u, token, nil
}

func (s *Service) Me(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.FindUserByID(ctx, userID)
}

// ForgotPassword issues a 6-digit single-use code. The code rides the
// notification bus; there is no in-process mail delivery.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil {
		// Do not reveal whether the address is registered.
		if _, ok := apperrors.IsNotFoundError(err); ok {
			return nil
		}
		return err
	}

	code, err := generateOTP()
	if err != nil {
		return apperrors.NewInternalError("generating reset code", err)
	}

	otp := &domain.PasswordResetOTP{
		UserID:    u.ID,
		Email:     u.Email,
		Code:      code,
		ExpiresAt: s.now().Add(s.otpWindow),
	}
	if err := s.repo.InsertOTP(ctx, otp); err != nil {
		return err
	}

	if err := s.publisher.Publish(ctx, "auth_events", map[string]any{
		"type":    "password_reset_requested",
		"user_id": u.ID,
		"email":   u.Email,
		"code":    code,
	}); err != nil {
		s.logger.Warn("publishing reset event failed", zap.Error(err))
	}

	s.logger.Info("password reset requested", zap.String("userId", u.ID))
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	otp, err := s.repo.LatestOTP(ctx, email)
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); ok {
			return apperrors.NewValidationError("invalid or expired reset code")
		}
		return err
	}

	if otp.Code != code || !otp.Valid(s.now()) {
		return apperrors.NewValidationError("invalid or expired reset code")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.NewInternalError("hashing password", err)
	}

	if err := s.repo.UpdatePassword(ctx, otp.UserID, string(hash)); err != nil {
		return err
	}
	if err := s.repo.MarkOTPUsed(ctx, otp.ID); err != nil {
		return err
	}

	s.logger.Info("password reset", zap.String("userId", otp.UserID))
	return nil
}

func (s *Service) publishEvent(ctx context.Context, event string, u *domain.User) {
	if err := s.publisher.Publish(ctx, "auth_events", map[string]any{
		"type":    event,
		"user_id": u.ID,
		"email":   u.Email,
	}); err != nil {
		s.logger.Warn("publishing auth event failed",
			zap.String("event", event), zap.Error(err))
	}
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
