package hr

import (
	"context"
	"time"

	"go.uber.org/zap"

	"smartbiz/internal/domain"
	apperrors "smartbiz/internal/errors"
	"smartbiz/internal/pagination"
)

type Service struct {
	repo   *MySQLRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewService(repo *MySQLRepository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

func (s *Service) ListEmployees(ctx context.Context, search, department string, page pagination.Page) ([]Employee, int64, error) {
	return s.repo.ListEmployees(ctx, search, department, page)
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	return s.repo.AggregateStats(ctx, s.now().UTC())
}

func (s *Service) ListAttendance(ctx context.Context, date time.Time) ([]domain.Attendance, error) {
	return s.repo.ListAttendance(ctx, date)
}

// CheckIn opens today's attendance record for the user. Checking in twice
// on the same day is a conflict.
func (s *Service) CheckIn(ctx context.Context, userID string) (*domain.Attendance, error) {
	exists, err := s.repo.UserExists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperrors.NewNotFoundError("user not found")
	}

	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	existing, err := s.repo.AttendanceFor(ctx, userID, today)
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); !ok {
			return nil, err
		}
	}
	if existing != nil && existing.CheckIn != nil {
		return nil, apperrors.NewConflictError("already checked in today")
	}

	if existing != nil {
		existing.CheckIn = &now
		existing.Status = domain.AttendancePresent
		if err := s.repo.UpdateAttendance(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	record := &domain.Attendance{
		UserID:  userID,
		Date:    today,
		CheckIn: &now,
		Status:  domain.AttendancePresent,
	}
	if err := s.repo.InsertAttendance(ctx, record); err != nil {
		return nil, err
	}

	s.logger.Info("attendance check-in", zap.String("userId", userID))
	return record, nil
}

// CheckOut closes today's record. Requires a prior check-in; checking out
// twice is a conflict.
func (s *Service) CheckOut(ctx context.Context, userID string) (*domain.Attendance, error) {
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	record, err := s.repo.AttendanceFor(ctx, userID, today)
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); ok {
			return nil, apperrors.NewValidationError("cannot check out without checking in")
		}
		return nil, err
	}
	if record.CheckIn == nil {
		return nil, apperrors.NewValidationError("cannot check out without checking in")
	}
	if record.CheckOut != nil {
		return nil, apperrors.NewConflictError("already checked out today")
	}

	record.CheckOut = &now
	if err := s.repo.UpdateAttendance(ctx, record); err != nil {
		return nil, err
	}

	s.logger.Info("attendance check-out", zap.String("userId", userID))
	return record, nil
}
