package models

import (
	"time"

	"github.com/google/uuid"
)

type SessionEnrollment struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"user_id"`
	SessionID      uuid.UUID `json:"session_id"`
	MembershipID   uuid.UUID `json:"membership_id"`
	EnrollmentDate time.Time `json:"enrollment_date"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type EnrollmentDetail struct {
	SessionEnrollment
	Attendance *Attendance `json:"attendance,omitempty"`
}

type Attendance struct {
	ID                  uuid.UUID  `json:"id"`
	SessionEnrollmentID uuid.UUID  `json:"session_enrollment_id"`
	Attended            bool       `json:"attended"`
	CheckInTime         *time.Time `json:"check_in_time"`
	CheckedInBy         *uuid.UUID `json:"checked_in_by"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}
