package handler

import (
	"context"
	"fmt"
	"time"

	"github.com/afyalink/care-booking/backend/internal/config"
	"github.com/afyalink/care-booking/backend/internal/domain"
	"github.com/afyalink/care-booking/backend/internal/metrics"
	"github.com/afyalink/care-booking/backend/internal/repository"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

// MailPublisher is the part of *amqp.Channel the handlers use.
type MailPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	translator  ut.Translator
	mailChannel MailPublisher
	redisClient *redis.Client
	metrics     *metrics.BookingMetrics
	location    *time.Location
	now         func() time.Time

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, mailCh MailPublisher, rdb *redis.Client, m *metrics.BookingMetrics) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	en := en.New()
	uni := ut.New(en, en)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(cfg.Booking.Location)
	if err != nil {
		return nil, fmt.Errorf("load booking location: %w", err)
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		translator:  trans,
		mailChannel: mailCh,
		redisClient: rdb,
		metrics:     m,
		location:    loc,
		now:         time.Now,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	h.Mux.Handle("/metrics", promhttp.Handler())

	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Route("/reset-password", func(r chi.Router) {
			r.Post("/require", h.RequireResetPassword)
			r.Post("/confirm", h.ConfirmResetPassword)
		})
	})

	// browsing providers and their free slots does not need an account
	h.Mux.Route("/providers", func(r chi.Router) {
		r.Get("/", h.GetProviders)
		r.Route("/{id}", func(r chi.Router) {
			r.Use(h.provider)
			r.Get("/", h.GetProvider)
			r.Get("/availability-settings", h.GetProviderAvailabilitySettings)
			r.Get("/available-time-slots", h.GetAvailableTimeSlots)
			r.Get("/occupied-dates", h.GetOccupiedDates)
		})
	})

	h.Mux.Post("/assistant/recommendation", h.GetRecommendation)

	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Use(h.myInfo)

		r.Route("/my-info", func(r chi.Router) {
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
			r.Get("/appointments", h.GetMyAppointments)

			r.Group(func(r chi.Router) {
				r.Use(h.RequiredRole([]domain.Role{domain.RoleDoctor, domain.RoleNurse}))
				r.Use(h.myProvider)
				r.Get("/availability-settings", h.GetMyAvailabilitySettings)
				r.Put("/availability-settings", h.UpdateMyAvailabilitySettings)
				r.Route("/unavailable-sessions", func(r chi.Router) {
					r.Get("/", h.GetMyUnavailableSessions)
					r.Post("/", h.CreateUnavailableSession)
					r.Delete("/{id}", h.DeleteUnavailableSession)
				})
			})
		})

		r.Route("/appointments", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RolePatient})).Post("/", h.CreateAppointment)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.appointment)
				r.Get("/", h.GetAppointment)
				r.Patch("/cancel", h.CancelAppointment)
				r.With(h.RequiredRole([]domain.Role{domain.RoleDoctor, domain.RoleNurse}), h.myProvider).
					Patch("/complete", h.CompleteAppointment)
			})
		})
	})
}
