package domain

import "time"

// UnavailableSession blocks part of a single date regardless of the weekly schedule.
type UnavailableSession struct {
	ID         int64     `json:"id"`
	ProviderID int64     `json:"providerID"`
	Date       string    `json:"date"`      // YYYY-MM-DD
	StartTime  string    `json:"startTime"` // HH:MM
	EndTime    string    `json:"endTime"`   // HH:MM
	Reason     string    `json:"reason"`
	CreatedAt  time.Time `json:"createdAt"`
}
