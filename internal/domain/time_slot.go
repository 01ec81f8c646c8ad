package domain

type SlotStatus string

const (
	SlotAvailable   SlotStatus = "available"
	SlotBooked      SlotStatus = "booked"
	SlotUnavailable SlotStatus = "unavailable"
)

type TimeSlot struct {
	Time      string     `json:"time"`
	Available bool       `json:"available"`
	Status    SlotStatus `json:"status"`
}

// AvailableTimeSlots is the wire shape of the slot-availability endpoint.
type AvailableTimeSlots struct {
	Date                       string     `json:"date"`
	Slots                      []TimeSlot `json:"slots"`
	AvailableSlots             []string   `json:"available_slots"`
	OccupiedSlots              []string   `json:"occupied_slots"`
	UnavailableSlots           []string   `json:"unavailable_slots"`
	AppointmentDurationMinutes int        `json:"appointment_duration_minutes"`
}
