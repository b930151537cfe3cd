// Package billing holds the calendar arithmetic behind contract billing cycles.
// Every function is pure: "today" is never read from the clock here.
package billing

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sjperalta/rentdesk-api/internal/models"
)

var (
	ErrInvalidDateInput          = errors.New("invalid date input")
	ErrUnknownPlanOrContractType = errors.New("unknown payment plan or contract type")
)

// DerivedDates are the values the caller must persist after a schedule change
type DerivedDates struct {
	NextPaymentDate time.Time `json:"next_payment_date"`
	ContractEndDate time.Time `json:"contract_end_date"`
}

var dateLayouts = []string{
	models.DateLayout,
	"2006/01/02",
	"2006/1/2",
	time.RFC3339,
}

// ParseDate parses a date-only string in any of the accepted layouts
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: empty date", ErrInvalidDateInput)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return DateOnly(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateInput, value)
}

// DateOnly drops the clock part, keeping t's calendar date at midnight UTC
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysUntil returns the number of calendar days from `from` to `to` (negative when to is earlier)
func DaysUntil(from, to time.Time) int {
	return int(DateOnly(to).Sub(DateOnly(from)) / (24 * time.Hour))
}

// DaysInMonth returns the last day-of-month for the given month
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AddMonthsClamped moves t by whole calendar months and sets the day to
// min(day, last day of the target month). time.AddDate would overflow
// 01-31 + 1 month into March; this never leaves the target month.
func AddMonthsClamped(t time.Time, months, day int) time.Time {
	total := int(t.Month()) - 1 + months
	year := t.Year() + floorDiv(total, 12)
	month := time.Month(total-floorDiv(total, 12)*12 + 1)

	if last := DaysInMonth(year, month); day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// ComputeNextPaymentDate adds one billing cycle to startDate and lands on the
// payment day, clamped to the last day of the target month. A non-positive
// paymentDay falls back to the start date's day-of-month.
func ComputeNextPaymentDate(startDate *time.Time, planID uint, paymentDay int) (time.Time, error) {
	if startDate == nil || startDate.IsZero() {
		return time.Time{}, fmt.Errorf("%w: start date is required", ErrInvalidDateInput)
	}
	plan, ok := models.FindPaymentPlan(planID)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: payment plan %d", ErrUnknownPlanOrContractType, planID)
	}
	if paymentDay > 31 {
		return time.Time{}, fmt.Errorf("%w: payment day %d out of range", ErrInvalidDateInput, paymentDay)
	}

	start := DateOnly(*startDate)
	if paymentDay <= 0 {
		paymentDay = start.Day()
	}
	return AddMonthsClamped(start, plan.MonthsPerCycle, paymentDay), nil
}

// ComputeContractEndDate adds the contract term to startDate, keeping the
// day-of-month (Feb 29 becomes Feb 28 on non-leap target years).
func ComputeContractEndDate(startDate *time.Time, contractTypeID uint) (time.Time, error) {
	if startDate == nil || startDate.IsZero() {
		return time.Time{}, fmt.Errorf("%w: start date is required", ErrInvalidDateInput)
	}
	ct, ok := models.FindContractType(contractTypeID)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: contract type %d", ErrUnknownPlanOrContractType, contractTypeID)
	}

	start := DateOnly(*startDate)
	return AddMonthsClamped(start, ct.Years*12, start.Day()), nil
}

// Derive computes both derived dates for a contract record without touching it
func Derive(c *models.Contract) (DerivedDates, error) {
	next, err := ComputeNextPaymentDate(c.StartDate, c.PaymentPlanID, c.PaymentDayOfMonth)
	if err != nil {
		return DerivedDates{}, fmt.Errorf("contract %d next payment date: %w", c.ID, err)
	}
	end, err := ComputeContractEndDate(c.StartDate, c.ContractTypeID)
	if err != nil {
		return DerivedDates{}, fmt.Errorf("contract %d end date: %w", c.ID, err)
	}
	return DerivedDates{NextPaymentDate: next, ContractEndDate: end}, nil
}

// Staleness reports which derived dates an edit invalidated
type Staleness struct {
	NextPaymentDate bool
	ContractEndDate bool
}

// Any returns true if at least one derived date must be recomputed
func (s Staleness) Any() bool {
	return s.NextPaymentDate || s.ContractEndDate
}

// NeedsRecalculation compares a contract before and after an edit.
// Start date, plan and payment day drive the next payment date; start date
// and contract type drive the end date. Missing derived dates are always stale.
func NeedsRecalculation(before, after *models.Contract) Staleness {
	startChanged := !sameDate(before.StartDate, after.StartDate)

	return Staleness{
		NextPaymentDate: after.NextPaymentDate == nil ||
			startChanged ||
			before.PaymentPlanID != after.PaymentPlanID ||
			before.PaymentDayOfMonth != after.PaymentDayOfMonth,
		ContractEndDate: after.ContractEndDate == nil ||
			startChanged ||
			before.ContractTypeID != after.ContractTypeID,
	}
}

func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return DateOnly(*a).Equal(DateOnly(*b))
}
