package domain

import "time"

type ProviderKind string

const (
	ProviderKindDoctor ProviderKind = "doctor"
	ProviderKindNurse  ProviderKind = "nurse"
)

type Provider struct {
	ID        int64                `json:"id"`
	UserID    int64                `json:"userID"`
	Kind      ProviderKind         `json:"kind"`
	FullName  string               `json:"fullName"`
	Specialty string               `json:"specialty"`
	Settings  AvailabilitySettings `json:"availabilitySettings"`
	CreatedAt time.Time            `json:"createdAt"`
	Version   int32                `json:"-"`
}
