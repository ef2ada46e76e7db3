// Package services provides the derived-state computations of the tracker.
//
// This file implements the Strategy Pattern for stepping recurring transactions.
// Each recurrence rule (daily, weekly, monthly) has its own stepper that
// encapsulates how the n-th occurrence is derived from the anchor date.

package services

import (
	"fmt"
	"time"

	"quattrini/internal/core"
)

// Stepper is the strategy interface for projecting a recurrence rule forward.
type Stepper interface {
	// Occurrence returns the n-th occurrence after anchor; n == 0 is the anchor itself.
	Occurrence(anchor core.Date, n int) core.Date
}

// DailyStepper implements Stepper for daily recurrences.
type DailyStepper struct{}

func (DailyStepper) Occurrence(anchor core.Date, n int) core.Date {
	return anchor.AddDays(n)
}

// WeeklyStepper implements Stepper for weekly recurrences.
type WeeklyStepper struct{}

func (WeeklyStepper) Occurrence(anchor core.Date, n int) core.Date {
	return anchor.AddDays(7 * n)
}

// MonthlyStepper implements Stepper for monthly recurrences.
type MonthlyStepper struct{}

// Occurrence moves n calendar months from anchor. When the anchor day does
// not exist in the target month (e.g., Jan 31 -> Feb) it lands on the last
// day of that month, and later months return to the anchor day.
func (MonthlyStepper) Occurrence(anchor core.Date, n int) core.Date {
	first := time.Date(anchor.Year(), anchor.Time.Month()+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	lastDayOfMonth := first.AddDate(0, 1, -1).Day()
	day := anchor.Day()
	if day > lastDayOfMonth {
		day = lastDayOfMonth
	}
	return core.NewDate(first.Year(), int(first.Month()), day)
}

// recurrenceSteppers maps recurrence rules to their corresponding steppers.
var recurrenceSteppers = map[core.Recurrence]Stepper{
	core.Daily:   DailyStepper{},
	core.Weekly:  WeeklyStepper{},
	core.Monthly: MonthlyStepper{},
}

// GetStepper returns the stepper for a recurrence rule.
// Returns an error for "none" and for unknown rules.
func GetStepper(rule core.Recurrence) (Stepper, error) {
	stepper, ok := recurrenceSteppers[rule]
	if !ok {
		return nil, fmt.Errorf("no stepper for recurrence %q", rule)
	}
	return stepper, nil
}

// RegisterStepper allows registering steppers for new recurrence rules.
func RegisterStepper(rule core.Recurrence, stepper Stepper) {
	recurrenceSteppers[rule] = stepper
}

// NextPaymentDate returns the first occurrence of t on or after the calendar
// day of now. Transactions that do not recur get core.FarFuture.
func NextPaymentDate(t core.Transaction, now time.Time) core.Date {
	stepper, err := GetStepper(t.Recurring)
	if err != nil {
		return core.FarFuture
	}
	today := core.DateOf(now)
	next := t.Date
	for n := 1; next.Before(today.Time); n++ {
		next = stepper.Occurrence(t.Date, n)
	}
	return next
}

// DaysUntilPayment is the whole number of days from now's calendar day to
// the next payment of t.
func DaysUntilPayment(t core.Transaction, now time.Time) int {
	return core.DateOf(now).DaysUntil(NextPaymentDate(t, now))
}
