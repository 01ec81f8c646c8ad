package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/afyalink/care-booking/backend/internal/domain"
	"github.com/afyalink/care-booking/backend/internal/schedule"
	"github.com/afyalink/care-booking/backend/internal/slots"
	"github.com/redis/go-redis/v9"
)

// The provider version is part of the key, so saving new settings orphans every cached day.
func slotCacheKey(p *domain.Provider, date string) string {
	return fmt.Sprintf("available_time_slots_%d_v%d_%s", p.ID, p.Version, date)
}

func (h *Handler) redisContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), time.Duration(h.config.Redis.OperationExpiration)*time.Second)
}

// availableTimeSlots returns the classified slots of p on date. With useCache a recent result
// may be served from Redis; bookings always recompute. Today is never cached because its
// slots expire as the clock moves.
func (h *Handler) availableTimeSlots(p *domain.Provider, date string, useCache bool) (*domain.AvailableTimeSlots, error) {
	if _, err := slots.ParseDate(date); err != nil {
		return nil, err
	}
	if date == h.today() {
		useCache = false
	}

	key := slotCacheKey(p, date)
	if useCache {
		cached, err := h.cachedTimeSlots(key)
		switch {
		case err == nil:
			h.metrics.ObserveSlotRequest("hit")
			return cached, nil
		case errors.Is(err, redis.Nil):
			h.metrics.ObserveSlotRequest("miss")
		default:
			// a broken cache should not take the booking page down
			h.metrics.ObserveSlotRequest("error")
			slog.Warn("slot cache unavailable", "key", key, "error", err)
		}
	}

	res, err := h.computeTimeSlots(p, date)
	if err != nil {
		return nil, err
	}

	if useCache {
		if body, err := json.Marshal(res); err == nil {
			ctx, cancel := h.redisContext()
			defer cancel()
			if err := h.redisClient.Set(ctx, key, body, time.Duration(h.config.Booking.SlotCacheTTL)*time.Second).Err(); err != nil {
				slog.Warn("failed to cache time slots", "key", key, "error", err)
			}
		}
	}

	return res, nil
}

func (h *Handler) cachedTimeSlots(key string) (*domain.AvailableTimeSlots, error) {
	ctx, cancel := h.redisContext()
	defer cancel()

	body, err := h.redisClient.Get(ctx, key).Bytes()
	if err != nil {
		return nil, err
	}

	res := &domain.AvailableTimeSlots{}
	if err := json.Unmarshal(body, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (h *Handler) computeTimeSlots(p *domain.Provider, date string) (*domain.AvailableTimeSlots, error) {
	day, err := slots.DayFor(p.Settings, date)
	if err != nil {
		return nil, err
	}

	appointments, err := h.repository.GetScheduledAppointmentsByDate(p.ID, date)
	if err != nil {
		return nil, err
	}
	sessions, err := h.repository.GetUnavailableSessionsByDate(p.ID, date)
	if err != nil {
		return nil, err
	}

	in := slots.Input{
		Day:             day,
		DurationMinutes: p.Settings.AppointmentDurationMinutes,
		Booked:          make([]slots.Interval, 0, len(appointments)),
		Blocked:         make([]slots.Interval, 0, len(sessions)),
		NotBefore:       h.notBefore(date),
	}

	for _, a := range appointments {
		start, err := schedule.ParseClock(a.StartTime)
		if err != nil {
			return nil, fmt.Errorf("appointment %d: %w", a.ID, err)
		}
		in.Booked = append(in.Booked, slots.Interval{Start: start, End: start + a.DurationMinutes})
	}
	for _, s := range sessions {
		interval, err := slots.ParseInterval(s.StartTime, s.EndTime)
		if err != nil {
			return nil, fmt.Errorf("unavailable session %d: %w", s.ID, err)
		}
		in.Blocked = append(in.Blocked, interval)
	}

	res, err := slots.Classify(in)
	if err != nil {
		return nil, err
	}
	res.Date = date

	h.metrics.ObserveSlotsComputed(len(res.AvailableSlots), len(res.OccupiedSlots), len(res.UnavailableSlots))
	return &res, nil
}

// notBefore is the first bookable minute of date: none on past dates, from now on today.
func (h *Handler) notBefore(date string) int {
	now := h.now().In(h.location)
	today := now.Format(slots.DateLayout)

	switch {
	case date < today:
		return 24 * 60
	case date == today:
		return now.Hour()*60 + now.Minute()
	default:
		return 0
	}
}

func (h *Handler) invalidateTimeSlots(p *domain.Provider, date string) {
	ctx, cancel := h.redisContext()
	defer cancel()

	if err := h.redisClient.Del(ctx, slotCacheKey(p, date)).Err(); err != nil {
		slog.Warn("failed to invalidate slot cache", "provider_id", p.ID, "date", date, "error", err)
	}
}

func (h *Handler) today() string {
	return h.now().In(h.location).Format(slots.DateLayout)
}
