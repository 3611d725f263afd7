package model

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentType is the kind of in-store service booked.
type AppointmentType string

const (
	AppointmentEyeExam            AppointmentType = "eye_exam"
	AppointmentContactLensFitting AppointmentType = "contact_lens_fitting"
	AppointmentFrameStyling       AppointmentType = "frame_styling"
	AppointmentFollowUp           AppointmentType = "follow_up"
)

// Valid reports whether t is a known appointment type.
func (t AppointmentType) Valid() bool {
	switch t {
	case AppointmentEyeExam, AppointmentContactLensFitting, AppointmentFrameStyling, AppointmentFollowUp:
		return true
	}
	return false
}

// AppointmentStatus is the state of a booking.
type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "pending"
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCancelled AppointmentStatus = "cancelled"
)

// AppointmentStatuses lists every valid appointment status.
var AppointmentStatuses = []AppointmentStatus{
	AppointmentPending,
	AppointmentConfirmed,
	AppointmentCompleted,
	AppointmentCancelled,
}

// Valid reports whether s is a known appointment status.
func (s AppointmentStatus) Valid() bool {
	for _, v := range AppointmentStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// AppointmentDateLayout is the wire format of appointment dates.
const AppointmentDateLayout = "2006-01-02"

// Appointment is an in-store booking, made by a user or a guest.
type Appointment struct {
	ID              uuid.UUID         `json:"id" db:"id"`
	UserID          *uuid.UUID        `json:"user_id,omitempty" db:"user_id"`
	GuestName       string            `json:"guest_name,omitempty" db:"guest_name"`
	GuestEmail      string            `json:"guest_email,omitempty" db:"guest_email"`
	GuestPhone      string            `json:"guest_phone,omitempty" db:"guest_phone"`
	AppointmentType AppointmentType   `json:"appointment_type" db:"appointment_type"`
	Date            string            `json:"appointment_date" db:"appointment_date"`
	Time            string            `json:"appointment_time" db:"appointment_time"`
	Notes           string            `json:"notes,omitempty" db:"notes"`
	Status          AppointmentStatus `json:"status" db:"status"`
	CreatedAt       time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at" db:"updated_at"`
}

// AppointmentRequest is the booking payload.
type AppointmentRequest struct {
	AppointmentType AppointmentType `json:"appointment_type"`
	Date            string          `json:"appointment_date"`
	Time            string          `json:"appointment_time"`
	Notes           string          `json:"notes,omitempty"`
	GuestName       string          `json:"guest_name,omitempty"`
	GuestEmail      string          `json:"guest_email,omitempty"`
	GuestPhone      string          `json:"guest_phone,omitempty"`
}

// AppointmentUpdate is a partial update of an owned appointment.
type AppointmentUpdate struct {
	Date   *string            `json:"appointment_date,omitempty"`
	Time   *string            `json:"appointment_time,omitempty"`
	Notes  *string            `json:"notes,omitempty"`
	Status *AppointmentStatus `json:"status,omitempty"`
}

// AppointmentFilter narrows appointment listings.
type AppointmentFilter struct {
	UserID *uuid.UUID
	Status *AppointmentStatus
	Limit  int
	Offset int
}

// AppointmentList is a page of appointments plus the unpaged total.
type AppointmentList struct {
	Appointments []Appointment `json:"appointments"`
	Total        int           `json:"total"`
	Limit        int           `json:"limit"`
	Offset       int           `json:"offset"`
}

// AppointmentStatusUpdate is the payload of an administrative status change.
type AppointmentStatusUpdate struct {
	Status AppointmentStatus `json:"status"`
}
