// Package metrics holds the Prometheus collectors of the booking API. Every Observe method is
// safe on a nil receiver so handlers can run without metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

type BookingMetrics struct {
	httpDuration  *prometheus.HistogramVec
	slotRequests  *prometheus.CounterVec
	slotsComputed *prometheus.HistogramVec
	settingsSaves *prometheus.CounterVec
	appointments  *prometheus.CounterVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "care_booking",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency of HTTP requests by route pattern",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		slotRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "care_booking",
			Subsystem: "slots",
			Name:      "requests_total",
			Help:      "Available time slot lookups by cache outcome",
		}, []string{"cache"}),
		slotsComputed: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "care_booking",
			Subsystem: "slots",
			Name:      "per_day",
			Help:      "Number of slots computed for one provider and date, by status",
			Buckets:   []float64{0, 4, 8, 16, 32, 64},
		}, []string{"status"}),
		settingsSaves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "care_booking",
			Subsystem: "availability",
			Name:      "settings_saves_total",
			Help:      "Availability settings saves by result",
		}, []string{"result"}),
		appointments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "care_booking",
			Subsystem: "appointments",
			Name:      "events_total",
			Help:      "Appointment bookings and cancellations",
		}, []string{"event"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.httpDuration, m.slotRequests, m.slotsComputed, m.settingsSaves, m.appointments)
	return m
}

func (m *BookingMetrics) ObserveHTTP(method, route string, status int, seconds float64) {
	if m == nil {
		return
	}
	m.httpDuration.WithLabelValues(method, route, statusClass(status)).Observe(seconds)
}

// ObserveSlotRequest records whether a lookup was served from cache: "hit", "miss" or "error".
func (m *BookingMetrics) ObserveSlotRequest(cache string) {
	if m == nil {
		return
	}
	m.slotRequests.WithLabelValues(cache).Inc()
}

func (m *BookingMetrics) ObserveSlotsComputed(available, booked, unavailable int) {
	if m == nil {
		return
	}
	m.slotsComputed.WithLabelValues("available").Observe(float64(available))
	m.slotsComputed.WithLabelValues("booked").Observe(float64(booked))
	m.slotsComputed.WithLabelValues("unavailable").Observe(float64(unavailable))
}

func (m *BookingMetrics) ObserveSettingsSave(result string) {
	if m == nil {
		return
	}
	m.settingsSaves.WithLabelValues(result).Inc()
}

func (m *BookingMetrics) ObserveAppointment(event string) {
	if m == nil {
		return
	}
	m.appointments.WithLabelValues(event).Inc()
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
