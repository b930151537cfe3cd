// Package lifecycle derives a contract's effective state and reminder urgency
// for a given day. Classification is a pure read: it never commits state.
package lifecycle

import (
	"sort"
	"time"

	"github.com/sjperalta/rentdesk-api/internal/billing"
	"github.com/sjperalta/rentdesk-api/internal/models"
)

// Urgency is the reminder severity, independent of lifecycle state
type Urgency string

// Urgency values, highest priority first
const (
	UrgencyContractExpired    Urgency = "contract_expired"
	UrgencyContractNearExpiry Urgency = "contract_near_expiry"
	UrgencyPaymentOverdue     Urgency = "payment_overdue"
	UrgencyPaymentNearDue     Urgency = "payment_near_due"
	UrgencyNone               Urgency = "none"
)

// IsContractUrgency returns true for urgencies that concern the contract term
func (u Urgency) IsContractUrgency() bool {
	return u == UrgencyContractExpired || u == UrgencyContractNearExpiry
}

// IsPaymentUrgency returns true for urgencies that concern the next payment
func (u Urgency) IsPaymentUrgency() bool {
	return u == UrgencyPaymentOverdue || u == UrgencyPaymentNearDue
}

// StyleHint is a presentation token; screens map it to their own palette
type StyleHint string

const (
	StyleTerminated StyleHint = "terminated"
	StyleExpired    StyleHint = "expired"
	StyleExpiring   StyleHint = "expiring"
	StyleOverdue    StyleHint = "overdue"
	StyleDueSoon    StyleHint = "due-soon"
	StylePending    StyleHint = "pending"
	StyleNormal     StyleHint = "normal"
)

// Default windows, in days
const (
	DefaultPaymentDueDays    = 5
	DefaultRenewalWindowDays = 30
)

// Thresholds configures the "near" windows
type Thresholds struct {
	PaymentDueDays    int
	RenewalWindowDays int
}

// Classification is the result handed to list screens and the reminder sweep
type Classification struct {
	LifecycleState models.LifecycleState `json:"lifecycle_state"`
	Urgency        Urgency               `json:"urgency"`
	StyleHint      StyleHint             `json:"style_hint"`
}

// Classifier labels contracts. It holds configuration only, so it is safe for concurrent use.
type Classifier struct {
	thresholds Thresholds
}

// NewClassifier creates a classifier; non-positive windows fall back to the defaults
func NewClassifier(t Thresholds) *Classifier {
	if t.PaymentDueDays <= 0 {
		t.PaymentDueDays = DefaultPaymentDueDays
	}
	if t.RenewalWindowDays <= 0 {
		t.RenewalWindowDays = DefaultRenewalWindowDays
	}
	return &Classifier{thresholds: t}
}

// DefaultClassifier uses the 5 day payment and 30 day renewal windows
func DefaultClassifier() *Classifier {
	return NewClassifier(Thresholds{})
}

// Thresholds returns the configured windows
func (c *Classifier) Thresholds() Thresholds {
	return c.thresholds
}

// Classify derives the effective lifecycle state, urgency and style hint of a contract on `today`
func (c *Classifier) Classify(contract *models.Contract, today time.Time) Classification {
	state := EffectiveState(contract.LifecycleState, contract.ContractEndDate, today)
	urgency := c.Urgency(contract.NextPaymentDate, contract.ContractEndDate, today)

	return Classification{
		LifecycleState: state,
		Urgency:        urgency,
		StyleHint:      styleFor(state, urgency),
	}
}

// Urgency runs the first-match priority over the four reminder predicates.
// A nil date means "no signal" for its checks.
func (c *Classifier) Urgency(nextPaymentDate, contractEndDate *time.Time, today time.Time) Urgency {
	if contractEndDate != nil {
		if IsOverdue(*contractEndDate, today) {
			return UrgencyContractExpired
		}
		if withinWindow(*contractEndDate, today, c.thresholds.RenewalWindowDays) {
			return UrgencyContractNearExpiry
		}
	}
	if nextPaymentDate != nil {
		if IsOverdue(*nextPaymentDate, today) {
			return UrgencyPaymentOverdue
		}
		if IsNearPayment(*nextPaymentDate, today, c.thresholds.PaymentDueDays) {
			return UrgencyPaymentNearDue
		}
	}
	return UrgencyNone
}

// EffectiveState reports Expired once today is past the end date, unless the
// stored state is Terminated. The stored state itself is left to the workflow.
func EffectiveState(stored models.LifecycleState, contractEndDate *time.Time, today time.Time) models.LifecycleState {
	if stored == models.LifecycleTerminated {
		return stored
	}
	if contractEndDate != nil && IsOverdue(*contractEndDate, today) {
		return models.LifecycleExpired
	}
	return stored
}

// IsOverdue returns true when today is strictly after date
func IsOverdue(date, today time.Time) bool {
	return billing.DaysUntil(today, date) < 0
}

// IsNearPayment returns true when date is between today and thresholdDays ahead, inclusive
func IsNearPayment(date, today time.Time, thresholdDays int) bool {
	return withinWindow(date, today, thresholdDays)
}

// ShouldShowRenewalNotice covers both near-expiry and already-expired contracts
func ShouldShowRenewalNotice(contractEndDate, today time.Time, windowDays int) bool {
	return billing.DaysUntil(today, contractEndDate) <= windowDays
}

func withinWindow(date, today time.Time, days int) bool {
	left := billing.DaysUntil(today, date)
	return left >= 0 && left <= days
}

func styleFor(state models.LifecycleState, urgency Urgency) StyleHint {
	if state == models.LifecycleTerminated {
		return StyleTerminated
	}
	switch urgency {
	case UrgencyContractExpired:
		return StyleExpired
	case UrgencyContractNearExpiry:
		return StyleExpiring
	case UrgencyPaymentOverdue:
		return StyleOverdue
	case UrgencyPaymentNearDue:
		return StyleDueSoon
	}
	if state == models.LifecycleDraft || state == models.LifecycleChecking {
		return StylePending
	}
	return StyleNormal
}

// Reminder is one row of the reminder list
type Reminder struct {
	ContractID      uint           `json:"contract_id"`
	BranchID        uint           `json:"branch_id"`
	CustomerID      uint           `json:"customer_id"`
	CustomerName    string         `json:"customer_name"`
	ContractName    string         `json:"contract_name"`
	NextPaymentDate *time.Time     `json:"next_payment_date"`
	ContractEndDate *time.Time     `json:"contract_end_date"`
	Classification  Classification `json:"classification"`
}

// SortByNextPaymentDate orders reminders by next payment date ascending.
// The sort is stable; reminders without a next payment date go last.
func SortByNextPaymentDate(items []Reminder) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].NextPaymentDate, items[j].NextPaymentDate
		if a == nil || b == nil {
			return a != nil && b == nil
		}
		return billing.DateOnly(*a).Before(billing.DateOnly(*b))
	})
}
