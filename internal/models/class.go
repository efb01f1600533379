package models

import (
	"time"

	"github.com/google/uuid"
)

type Class struct {
	ID              uuid.UUID  `json:"id"`
	Name            string     `json:"name"`
	Description     *string    `json:"description"`
	PricePerSession float64    `json:"price_per_session"`
	InstructorID    *uuid.UUID `json:"instructor_id"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type ClassDetail struct {
	Class
	Patterns         []RecurringPattern `json:"patterns"`
	UpcomingSessions []ClassSession     `json:"upcoming_sessions"`
}

type RecurringPattern struct {
	ID                uuid.UUID  `json:"id"`
	ClassID           uuid.UUID  `json:"class_id"`
	DayOfWeek         string     `json:"day_of_week"`
	StartTime         string     `json:"start_time"`
	DurationMinutes   int        `json:"duration_minutes"`
	EffectiveFromDate time.Time  `json:"effective_from_date"`
	EffectiveToDate   *time.Time `json:"effective_to_date"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}
