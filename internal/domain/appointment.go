package domain

import "time"

type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "scheduled"
	AppointmentCancelled AppointmentStatus = "cancelled"
	AppointmentCompleted AppointmentStatus = "completed"
)

type Appointment struct {
	ID              int64             `json:"id"`
	Reference       string            `json:"reference"`
	ProviderID      int64             `json:"providerID"`
	PatientID       int64             `json:"patientID"`
	Date            string            `json:"date"`      // YYYY-MM-DD
	StartTime       string            `json:"startTime"` // HH:MM
	DurationMinutes int               `json:"durationMinutes"`
	Status          AppointmentStatus `json:"status"`
	Notes           string            `json:"notes"`
	CreatedAt       time.Time         `json:"createdAt"`
	Version         int32             `json:"-"`
}
