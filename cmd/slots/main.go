package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/afyalink/care-booking/backend/internal/client"
	"github.com/afyalink/care-booking/backend/internal/slots"
)

func main() {
	var baseURL string
	var providerID int64
	var date string
	var slot string
	var timeout int

	flag.StringVar(&baseURL, "base-url", "http://localhost:3000", "booking API address")
	flag.Int64Var(&providerID, "provider", 0, "provider ID")
	flag.StringVar(&date, "date", "", "date to list, YYYY-MM-DD")
	flag.StringVar(&slot, "slot", "", "optional slot to check, e.g. 9:30am")
	flag.IntVar(&timeout, "timeout", 10, "request timeout in seconds")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if providerID <= 0 {
		logger.Error("provider must be positive")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := client.New(baseURL, time.Duration(timeout)*time.Second)
	session := slots.NewSession(c, providerID)

	if date != "" {
		if err := session.SelectDate(ctx, date); err != nil {
			logger.Error("failed to load time slots", "provider", providerID, "date", date, "error", err)
		}
	}

	view := session.View()
	fmt.Printf("provider %d  date %s  state %s\n", providerID, view.Date, view.State)
	if view.DurationMinutes > 0 {
		fmt.Printf("appointment duration: %d minutes\n", view.DurationMinutes)
	}
	for _, s := range view.Slots {
		fmt.Printf("  %-8s %s\n", s.Time, s.Status)
	}
	if view.Message != "" {
		fmt.Println(view.Message)
	}

	if slot != "" {
		if err := session.SelectSlot(slot); err != nil {
			logger.Error("slot cannot be booked", "slot", slot, "error", err)
			os.Exit(1)
		}
		fmt.Printf("%s is available\n", session.View().SelectedSlot)
	}

	if view.State == slots.StateLoadError {
		os.Exit(1)
	}
}
