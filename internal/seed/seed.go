// Package seed imports providers and their weekly availability from a CSV roster.
//
// The roster has a header row with the columns username, full_name, email, kind, specialty,
// duration (minutes), repeat_weekly and one column per weekday (sun..sat). A weekday cell is
// empty for a day off or holds one or more "HH:MM-HH:MM" windows separated by ";".
package seed

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/afyalink/care-booking/backend/internal/domain"
	"github.com/afyalink/care-booking/backend/internal/schedule"
)

var requiredColumns = []string{"username", "full_name", "email", "kind", "specialty", "duration", "repeat_weekly"}

type ProviderRecord struct {
	Username  string
	FullName  string
	Email     string
	Kind      domain.ProviderKind
	Specialty string
	Settings  domain.AvailabilitySettings
}

// Store is the part of the repository the import writes through.
type Store interface {
	GetUserByUsername(username string) (*domain.User, error)
	CreateUser(user *domain.User) error
	CreateProvider(p *domain.Provider) error
}

// ParseProviders reads the whole roster. A bad row aborts the parse with its line number.
func ParseProviders(r io.Reader) ([]ProviderRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}
	for _, d := range domain.Weekdays {
		if _, ok := index[dayColumn(d)]; !ok {
			return nil, fmt.Errorf("missing column %q", dayColumn(d))
		}
	}

	var records []ProviderRecord
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		get := func(col string) string { return strings.TrimSpace(row[index[col]]) }

		record, err := parseRecord(get)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, record)
	}

	return records, nil
}

func parseRecord(get func(string) string) (ProviderRecord, error) {
	record := ProviderRecord{
		Username:  get("username"),
		FullName:  get("full_name"),
		Email:     get("email"),
		Kind:      domain.ProviderKind(get("kind")),
		Specialty: get("specialty"),
	}
	if record.Username == "" || record.FullName == "" || record.Email == "" {
		return record, errors.New("username, full_name and email are required")
	}
	if record.Kind != domain.ProviderKindDoctor && record.Kind != domain.ProviderKindNurse {
		return record, fmt.Errorf("unknown provider kind %q", record.Kind)
	}

	repeat := true
	if v := get("repeat_weekly"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return record, fmt.Errorf("repeat_weekly: %w", err)
		}
		repeat = b
	}

	// start from a week with every day off
	e := schedule.NewEditor(&domain.WeeklySchedule{}, 0, repeat)

	if v := get("duration"); v != "" {
		minutes, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return record, fmt.Errorf("duration: %w", err)
		}
		if err := e.SetAppointmentDuration(minutes, schedule.UnitMinutes); err != nil {
			return record, err
		}
	}

	for _, d := range domain.Weekdays {
		cell := get(dayColumn(d))
		if cell == "" {
			continue
		}
		for i, window := range strings.Split(cell, ";") {
			start, end, ok := strings.Cut(strings.TrimSpace(window), "-")
			if !ok {
				return record, fmt.Errorf("%s: window %q is not HH:MM-HH:MM", dayColumn(d), window)
			}
			e.AddTimeSlot(d)
			if err := setWindowEnd(e, d, i, schedule.FieldStart, start); err != nil {
				return record, err
			}
			if err := setWindowEnd(e, d, i, schedule.FieldEnd, end); err != nil {
				return record, err
			}
		}
	}

	err := e.Save(context.Background(), func(_ context.Context, s domain.AvailabilitySchedule, duration int, repeat bool) error {
		record.Settings = domain.AvailabilitySettings{Schedule: s, AppointmentDurationMinutes: duration, RepeatWeekly: repeat}
		return nil
	})
	return record, err
}

func setWindowEnd(e *schedule.Editor, d time.Weekday, index int, field schedule.WindowField, value string) error {
	display, err := schedule.To12Hour(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("%s: %w", dayColumn(d), err)
	}
	return e.UpdateTime(d, index, field, display)
}

func dayColumn(d time.Weekday) string {
	return strings.ToLower(domain.DayKey(d))
}

// Import creates the user and provider behind every record. Usernames that already exist
// are skipped so the roster can be imported again after adding rows.
func Import(store Store, records []ProviderRecord, passwordHash string) (int, error) {
	created := 0
	for _, record := range records {
		_, err := store.GetUserByUsername(record.Username)
		switch {
		case err == nil:
			slog.Info("provider already exists, skipping", "username", record.Username)
			continue
		case !errors.Is(err, sql.ErrNoRows):
			return created, fmt.Errorf("look up %s: %w", record.Username, err)
		}

		role := domain.RoleDoctor
		if record.Kind == domain.ProviderKindNurse {
			role = domain.RoleNurse
		}
		user := &domain.User{
			Username:     record.Username,
			PasswordHash: passwordHash,
			FullName:     record.FullName,
			Email:        record.Email,
			Role:         role,
		}
		if err := store.CreateUser(user); err != nil {
			return created, fmt.Errorf("create user %s: %w", record.Username, err)
		}

		provider := &domain.Provider{
			UserID:    user.ID,
			Kind:      record.Kind,
			FullName:  record.FullName,
			Specialty: record.Specialty,
			Settings:  record.Settings,
		}
		if err := store.CreateProvider(provider); err != nil {
			return created, fmt.Errorf("create provider %s: %w", record.Username, err)
		}
		created++
	}

	return created, nil
}
