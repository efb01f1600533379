package models

import (
	"time"

	"github.com/google/uuid"
)

type ClassSession struct {
	ID           uuid.UUID  `json:"id"`
	ClassID      uuid.UUID  `json:"class_id"`
	SessionDate  time.Time  `json:"session_date"`
	StartTime    string     `json:"start_time"`
	EndTime      string     `json:"end_time"`
	MaxCapacity  int        `json:"max_capacity"`
	InstructorID *uuid.UUID `json:"instructor_id"`
	IsCancelled  bool       `json:"is_cancelled"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
