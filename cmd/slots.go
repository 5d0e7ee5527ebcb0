package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/freeweek/internal/availability"
	"github.com/teemow/freeweek/internal/logging"
)

func newSlotsCmd() *cobra.Command {
	var (
		debugMode   bool
		calConfig   CalendarConfig
		calendarIDs string
	)

	cmd := &cobra.Command{
		Use:   "slots",
		Short: "Compute and print this week's shared free slots",
		Long: `Fetch the team calendars once, compute the time slots where everyone is
free during working hours, and print them grouped by date.

Uses the same Google configuration as the serve command.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			loadCalendarEnvVars(cmd, &calConfig, calendarIDs)
			return runSlots(cmd, debugMode, calConfig)
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	registerCalendarFlags(cmd, &calConfig, &calendarIDs)

	return cmd
}

func runSlots(cmd *cobra.Command, debugMode bool, calConfig CalendarConfig) error {
	logger := logging.Setup(debugMode)

	if calConfig.Days <= 0 {
		return fmt.Errorf("days must be positive (got %d)", calConfig.Days)
	}

	loc, err := time.LoadLocation(calConfig.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", calConfig.Timezone, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	source, err := newCalendarSource(ctx, calConfig, logger, nil)
	if err != nil {
		return err
	}

	computer := availability.NewComputer(loc)
	now := computer.Now()

	busy, err := source.FetchBusyIntervals(ctx, now, calConfig.Days)
	if err != nil {
		return fmt.Errorf("failed to fetch busy intervals: %w", err)
	}

	slots, err := computer.ComputeFreeSlotsFrom(now.Format(availability.DateLayout), busy, calConfig.Days)
	if err != nil {
		return fmt.Errorf("failed to compute free slots: %w", err)
	}
	if len(slots) == 0 {
		cmd.Println("No shared free slots found.")
		return nil
	}

	printSlots(cmd, slots)
	return nil
}

// printSlots writes one line per date, times joined with commas.
func printSlots(cmd *cobra.Command, slots []availability.FreeSlot) {
	var (
		currentDate string
		times       []string
	)
	flush := func() {
		if currentDate != "" {
			cmd.Printf("%s  %s\n", currentDate, strings.Join(times, ", "))
		}
	}
	for _, slot := range slots {
		if slot.Date != currentDate {
			flush()
			currentDate = slot.Date
			times = times[:0]
		}
		times = append(times, slot.String())
	}
	flush()
}
