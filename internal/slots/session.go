package slots

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/afyalink/care-booking/backend/internal/domain"
)

// LoadErrorMessage is shown when the slot fetch fails.
const LoadErrorMessage = "Failed to load available time slots"

var (
	ErrSuperseded      = errors.New("date selection superseded by a newer one")
	ErrNoDateSelected  = errors.New("no date selected")
	ErrSlotsNotReady   = errors.New("time slots are not loaded")
	ErrSlotUnavailable = errors.New("time slot is not available")
)

type State int

const (
	StateNoDateSelected State = iota
	StateLoadingSlots
	StateSlotsReady
	StateLoadError
)

func (s State) String() string {
	switch s {
	case StateNoDateSelected:
		return "no_date_selected"
	case StateLoadingSlots:
		return "loading_slots"
	case StateSlotsReady:
		return "slots_ready"
	case StateLoadError:
		return "load_error"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Fetcher returns the classified slots of a provider for a date.
type Fetcher interface {
	GetAvailableTimeSlots(ctx context.Context, providerID int64, date string) (*domain.AvailableTimeSlots, error)
}

// View is a consistent snapshot of a Session.
type View struct {
	State           State
	Date            string
	Slots           []domain.TimeSlot
	DurationMinutes int
	SelectedSlot    string
	Message         string
}

// Session tracks one patient's date and slot selection for one provider. Every SelectDate
// starts a new generation: the previous fetch is cancelled and its result, if it still
// arrives, is dropped.
type Session struct {
	fetcher    Fetcher
	providerID int64

	mu         sync.Mutex
	state      State
	date       string
	generation uint64
	cancel     context.CancelFunc
	slots      []domain.TimeSlot
	duration   int
	selected   string
	message    string
}

func NewSession(fetcher Fetcher, providerID int64) *Session {
	return &Session{
		fetcher:    fetcher,
		providerID: providerID,
		state:      StateNoDateSelected,
		slots:      []domain.TimeSlot{},
	}
}

// SelectDate loads the slots for date and blocks until they are applied. It returns
// ErrSuperseded when another SelectDate started meanwhile; the session then reflects that
// newer call only.
func (s *Session) SelectDate(ctx context.Context, date string) error {
	if _, err := ParseDate(date); err != nil {
		return err
	}

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.generation++
	gen := s.generation
	fetchCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.state = StateLoadingSlots
	s.date = date
	s.slots = []domain.TimeSlot{}
	s.selected = ""
	s.message = ""
	s.mu.Unlock()

	resp, err := s.fetcher.GetAvailableTimeSlots(fetchCtx, s.providerID, date)

	s.mu.Lock()
	defer s.mu.Unlock()
	cancel()

	if gen != s.generation {
		return ErrSuperseded
	}
	s.cancel = nil

	if err != nil {
		s.state = StateLoadError
		s.slots = []domain.TimeSlot{}
		s.message = LoadErrorMessage
		return fmt.Errorf("%s: %w", LoadErrorMessage, err)
	}

	s.state = StateSlotsReady
	s.slots = Merge(resp.AvailableSlots, resp.OccupiedSlots, resp.UnavailableSlots)
	s.duration = resp.AppointmentDurationMinutes
	if len(s.slots) == 0 {
		s.message = "No time slots available for this date"
	}
	return nil
}

// SelectSlot records the patient's choice. It does not change the session state.
func (s *Session) SelectSlot(display string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateNoDateSelected:
		return ErrNoDateSelected
	case StateSlotsReady:
	default:
		return ErrSlotsNotReady
	}

	slot, ok := Find(s.slots, display)
	if !ok || !slot.Available {
		return fmt.Errorf("%w: %s", ErrSlotUnavailable, display)
	}
	s.selected = slot.Time
	return nil
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	slots := make([]domain.TimeSlot, len(s.slots))
	copy(slots, s.slots)

	message := s.message
	if s.state == StateNoDateSelected {
		message = "Select a date to see available times"
	}

	return View{
		State:           s.state,
		Date:            s.date,
		Slots:           slots,
		DurationMinutes: s.duration,
		SelectedSlot:    s.selected,
		Message:         message,
	}
}
