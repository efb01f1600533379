package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/farhoud/yoga-guru/internal/models"
	"github.com/farhoud/yoga-guru/internal/repository"
)

var ErrPatternNotFound = errors.New("pattern not found")

const defaultSessionCapacity = 20

// ScheduleService owns recurring weekly patterns and the concrete sessions
// derived from them.
type ScheduleService struct {
	db          *pgxpool.Pool
	classRepo   *repository.ClassRepository
	patternRepo *repository.PatternRepository
	sessionRepo *repository.SessionRepository
}

func NewScheduleService(
	db *pgxpool.Pool,
	classRepo *repository.ClassRepository,
	patternRepo *repository.PatternRepository,
	sessionRepo *repository.SessionRepository,
) *ScheduleService {
	return &ScheduleService{
		db:          db,
		classRepo:   classRepo,
		patternRepo: patternRepo,
		sessionRepo: sessionRepo,
	}
}

type CreatePatternInput struct {
	ClassID           uuid.UUID
	DayOfWeek         string
	StartTime         string
	DurationMinutes   int
	EffectiveFromDate time.Time
	EffectiveToDate   *time.Time
}

func (s *ScheduleService) CreatePattern(
	ctx context.Context,
	actorID uuid.UUID,
	role string,
	input CreatePatternInput,
) (*models.RecurringPattern, error) {
	if _, ok := parseDayOfWeek(input.DayOfWeek); !ok {
		return nil, ErrInvalidInput
	}
	if input.DurationMinutes <= 0 {
		return nil, ErrInvalidInput
	}
	if _, err := parseClockTime(input.StartTime); err != nil {
		return nil, ErrInvalidInput
	}
	if input.EffectiveToDate != nil && input.EffectiveToDate.Before(input.EffectiveFromDate) {
		return nil, ErrInvalidRange
	}

	if err := s.authorizeClassOwner(ctx, actorID, role, input.ClassID); err != nil {
		return nil, err
	}

	return s.patternRepo.Create(ctx, repository.CreatePatternInput{
		ClassID:           input.ClassID,
		DayOfWeek:         input.DayOfWeek,
		StartTime:         input.StartTime,
		DurationMinutes:   input.DurationMinutes,
		EffectiveFromDate: input.EffectiveFromDate,
		EffectiveToDate:   input.EffectiveToDate,
	})
}

func (s *ScheduleService) ListPatterns(
	ctx context.Context,
	classID uuid.UUID,
) ([]models.RecurringPattern, error) {
	return s.patternRepo.ListByClassID(ctx, classID)
}

// MaterializeSessions expands a pattern into dated sessions over [from, to].
// Dates that already have a session for the same (class, date, start time)
// are skipped, so re-running over the same window is a no-op.
func (s *ScheduleService) MaterializeSessions(
	ctx context.Context,
	actorID uuid.UUID,
	role string,
	patternID uuid.UUID,
	from time.Time,
	to time.Time,
) ([]models.ClassSession, error) {
	if to.Before(from) {
		return nil, ErrInvalidRange
	}

	pattern, err := s.patternRepo.GetByID(ctx, patternID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatternNotFound
		}
		return nil, err
	}

	class, err := s.classRepo.GetByID(ctx, pattern.ClassID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}
	if role != "instructor" || class.InstructorID == nil || *class.InstructorID != actorID {
		return nil, ErrForbidden
	}

	weekday, ok := parseDayOfWeek(pattern.DayOfWeek)
	if !ok {
		return nil, ErrInvalidInput
	}
	endTime, err := clockTimeAfter(pattern.StartTime, pattern.DurationMinutes)
	if err != nil {
		return nil, err
	}

	dates := patternOccurrences(
		weekday,
		laterDate(from, pattern.EffectiveFromDate),
		earlierEnd(to, pattern.EffectiveToDate),
	)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txSessionRepo := repository.NewSessionRepository(tx)

	created := make([]models.ClassSession, 0, len(dates))
	for _, date := range dates {
		session, inserted, err := txSessionRepo.CreateIfAbsent(ctx, repository.CreateSessionInput{
			ClassID:      pattern.ClassID,
			SessionDate:  date,
			StartTime:    pattern.StartTime,
			EndTime:      endTime,
			MaxCapacity:  defaultSessionCapacity,
			InstructorID: class.InstructorID,
		})
		if err != nil {
			return nil, err
		}
		if inserted {
			created = append(created, *session)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return created, nil
}

func (s *ScheduleService) ListSessions(
	ctx context.Context,
	classID uuid.UUID,
	timeframe string,
) ([]models.ClassSession, error) {
	return s.sessionRepo.List(ctx, repository.SessionListFilter{
		ClassID:   classID,
		Timeframe: timeframe,
	})
}

func (s *ScheduleService) GetSession(
	ctx context.Context,
	sessionID uuid.UUID,
) (*models.ClassSession, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

// CancelSession flips the cancellation flag. Existing enrollments are kept;
// enrolling into a cancelled session is rejected by the eligibility check.
func (s *ScheduleService) CancelSession(
	ctx context.Context,
	actorID uuid.UUID,
	role string,
	sessionID uuid.UUID,
) (*models.ClassSession, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if role != "instructor" || session.InstructorID == nil || *session.InstructorID != actorID {
		return nil, ErrForbidden
	}
	if session.IsCancelled {
		return session, nil
	}
	return s.sessionRepo.Cancel(ctx, sessionID)
}

func (s *ScheduleService) authorizeClassOwner(
	ctx context.Context,
	actorID uuid.UUID,
	role string,
	classID uuid.UUID,
) error {
	if role != "instructor" {
		return ErrForbidden
	}
	class, err := s.classRepo.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrClassNotFound
		}
		return err
	}
	if class.InstructorID == nil || *class.InstructorID != actorID {
		return ErrForbidden
	}
	return nil
}

// patternOccurrences lists every date in [from, to] falling on the weekday.
func patternOccurrences(weekday time.Weekday, from, to time.Time) []time.Time {
	from = truncateToDate(from)
	to = truncateToDate(to)

	dates := make([]time.Time, 0)
	if to.Before(from) {
		return dates
	}

	offset := (int(weekday) - int(from.Weekday()) + 7) % 7
	for d := from.AddDate(0, 0, offset); !d.After(to); d = d.AddDate(0, 0, 7) {
		dates = append(dates, d)
	}
	return dates
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func laterDate(a, b time.Time) time.Time {
	if truncateToDate(b).After(truncateToDate(a)) {
		return b
	}
	return a
}

func earlierEnd(to time.Time, effectiveTo *time.Time) time.Time {
	if effectiveTo != nil && truncateToDate(*effectiveTo).Before(truncateToDate(to)) {
		return *effectiveTo
	}
	return to
}

func parseDayOfWeek(name string) (time.Weekday, bool) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if d.String() == name {
			return d, true
		}
	}
	return time.Sunday, false
}

// parseClockTime accepts "15:04" or "15:04:05".
func parseClockTime(value string) (time.Time, error) {
	if t, err := time.Parse("15:04:05", value); err == nil {
		return t, nil
	}
	return time.Parse("15:04", value)
}

func clockTimeAfter(start string, minutes int) (string, error) {
	t, err := parseClockTime(start)
	if err != nil {
		return "", err
	}
	return t.Add(time.Duration(minutes) * time.Minute).Format("15:04:05"), nil
}
