package services

import (
	"context"
	"testing"
	"time"
)

func TestMaterializeSessionsIsIdempotent(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	scheduleService := newIntegrationScheduleService(pool)

	instructorID := createTestUser(t, ctx, pool, true)
	t.Cleanup(func() { cleanupTestUsers(t, ctx, pool, instructorID) })

	classID := createTestClass(t, ctx, pool, instructorID)

	pattern, err := scheduleService.CreatePattern(ctx, instructorID, "instructor", CreatePatternInput{
		ClassID:           classID,
		DayOfWeek:         "Wednesday",
		StartTime:         "18:30:00",
		DurationMinutes:   60,
		EffectiveFromDate: date(2030, time.March, 1),
	})
	if err != nil {
		t.Fatalf("CreatePattern: %v", err)
	}

	from := date(2030, time.March, 1)
	to := date(2030, time.March, 31)

	created, err := scheduleService.MaterializeSessions(ctx, instructorID, "instructor", pattern.ID, from, to)
	if err != nil {
		t.Fatalf("MaterializeSessions: %v", err)
	}
	if len(created) != 4 {
		t.Fatalf("expected 4 sessions for March 2030 Wednesdays, got %d", len(created))
	}
	for _, session := range created {
		if session.SessionDate.Weekday() != time.Wednesday {
			t.Fatalf("expected Wednesday session, got %s", session.SessionDate.Weekday())
		}
		if session.StartTime != "18:30:00" || session.EndTime != "19:30:00" {
			t.Fatalf("unexpected session times: %s - %s", session.StartTime, session.EndTime)
		}
	}

	// Re-running the same window creates nothing new.
	again, err := scheduleService.MaterializeSessions(ctx, instructorID, "instructor", pattern.ID, from, to)
	if err != nil {
		t.Fatalf("MaterializeSessions rerun: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("expected rerun to create 0 sessions, got %d", len(again))
	}

	sessions, err := scheduleService.ListSessions(ctx, classID, "")
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(sessions) != 4 {
		t.Fatalf("expected 4 sessions total, got %d", len(sessions))
	}
}

func TestMaterializeSessionsClampsToPatternWindow(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	scheduleService := newIntegrationScheduleService(pool)

	instructorID := createTestUser(t, ctx, pool, true)
	t.Cleanup(func() { cleanupTestUsers(t, ctx, pool, instructorID) })

	classID := createTestClass(t, ctx, pool, instructorID)

	effectiveTo := date(2030, time.April, 14)
	pattern, err := scheduleService.CreatePattern(ctx, instructorID, "instructor", CreatePatternInput{
		ClassID:           classID,
		DayOfWeek:         "Monday",
		StartTime:         "07:00:00",
		DurationMinutes:   45,
		EffectiveFromDate: date(2030, time.April, 1),
		EffectiveToDate:   &effectiveTo,
	})
	if err != nil {
		t.Fatalf("CreatePattern: %v", err)
	}

	// Requested window runs past the pattern's effective_to_date.
	created, err := scheduleService.MaterializeSessions(
		ctx, instructorID, "instructor", pattern.ID,
		date(2030, time.March, 25), date(2030, time.April, 30),
	)
	if err != nil {
		t.Fatalf("MaterializeSessions: %v", err)
	}
	// Mondays in [Apr 1, Apr 14] 2030: Apr 1, Apr 8.
	if len(created) != 2 {
		t.Fatalf("expected 2 sessions inside the effective window, got %d", len(created))
	}
}

func TestMarkNoShowIsTimeGated(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	enrollmentService := newIntegrationEnrollmentService(pool)
	membershipService := newIntegrationMembershipService(pool)

	instructorID := createTestUser(t, ctx, pool, true)
	studentID := createTestUser(t, ctx, pool, false)
	t.Cleanup(func() { cleanupTestUsers(t, ctx, pool, instructorID, studentID) })

	classID := createTestClass(t, ctx, pool, instructorID)
	createPaidMembership(t, ctx, membershipService, studentID, classID,
		date(2020, time.January, 1), date(2030, time.December, 31))

	pastSessionID := createTestSession(t, ctx, pool, classID, instructorID, date(2020, time.June, 1), 5)
	futureSessionID := createTestSession(t, ctx, pool, classID, instructorID, date(2030, time.June, 1), 5)

	pastEnrollment, err := enrollmentService.Enroll(ctx, studentID, pastSessionID)
	if err != nil {
		t.Fatalf("Enroll past session: %v", err)
	}
	futureEnrollment, err := enrollmentService.Enroll(ctx, studentID, futureSessionID)
	if err != nil {
		t.Fatalf("Enroll future session: %v", err)
	}

	if _, err := enrollmentService.MarkNoShow(ctx, instructorID, "instructor", futureEnrollment.ID); err != ErrSessionNotStarted {
		t.Fatalf("expected ErrSessionNotStarted for future session, got %v", err)
	}

	marked, err := enrollmentService.MarkNoShow(ctx, instructorID, "instructor", pastEnrollment.ID)
	if err != nil {
		t.Fatalf("MarkNoShow: %v", err)
	}
	if marked.Status != "no_show" {
		t.Fatalf("expected no_show status, got %q", marked.Status)
	}

	// no_show is terminal.
	if _, err := enrollmentService.Cancel(ctx, studentID, pastEnrollment.ID); err != ErrInvalidStateTransition {
		t.Fatalf("expected ErrInvalidStateTransition for cancelling a no_show, got %v", err)
	}

	// Only the assigned instructor may mark it.
	other := createTestUser(t, ctx, pool, true)
	t.Cleanup(func() { cleanupTestUsers(t, ctx, pool, other) })
	if _, err := enrollmentService.MarkNoShow(ctx, other, "instructor", futureEnrollment.ID); err != ErrForbidden {
		t.Fatalf("expected ErrForbidden for other instructor, got %v", err)
	}
}
