package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Contract represents a rental/membership agreement (a "project" in the branch UI)
type Contract struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	BranchID          uint            `gorm:"not null;index" json:"branch_id"`
	CustomerID        uint            `gorm:"not null;index" json:"customer_id"`
	Name              string          `gorm:"not null" json:"name"`
	StartDate         *time.Time      `gorm:"type:date" json:"start_date"`
	SigningDate       *time.Time      `gorm:"type:date" json:"signing_date"`
	PaymentDayOfMonth int             `gorm:"not null;default:1" json:"payment_day_of_month"`
	PaymentPlanID     uint            `gorm:"not null" json:"payment_plan_id"`
	ContractTypeID    uint            `gorm:"not null" json:"contract_type_id"`
	NextPaymentDate   *time.Time      `gorm:"type:date;index" json:"next_payment_date"`
	ContractEndDate   *time.Time      `gorm:"type:date;index" json:"contract_end_date"`
	LastPaymentDate   *time.Time      `gorm:"type:date" json:"last_payment_date"`
	LifecycleState    LifecycleState  `gorm:"not null;default:0;index" json:"lifecycle_state"`
	BasePrice         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"base_price"`
	PeriodPrice       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"period_price"`
	DepositAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"deposit_amount"`
	PenaltyAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"penalty_amount"`
	LateFeePercent    decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"late_fee_percent"`
	TerminatedAt      *time.Time      `json:"terminated_at"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`

	// Associations
	Customer Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
}

// TableName specifies the table name for Contract
func (Contract) TableName() string {
	return "contracts"
}

// LifecycleState is the administrative status of a contract
type LifecycleState int

// Lifecycle states. Values are persisted, do not renumber.
const (
	LifecycleDraft      LifecycleState = 0
	LifecycleActive     LifecycleState = 1
	LifecycleExpired    LifecycleState = 2
	LifecycleTerminated LifecycleState = 3
	LifecycleChecking   LifecycleState = 4
)

var lifecycleNames = map[LifecycleState]string{
	LifecycleDraft:      "draft",
	LifecycleActive:     "active",
	LifecycleExpired:    "expired",
	LifecycleTerminated: "terminated",
	LifecycleChecking:   "checking",
}

// String returns the state name used by the state machine and API payloads
func (s LifecycleState) String() string {
	if name, ok := lifecycleNames[s]; ok {
		return name
	}
	return "unknown"
}

// ParseLifecycleState converts a state name back to its value
func ParseLifecycleState(name string) (LifecycleState, bool) {
	for state, n := range lifecycleNames {
		if n == name {
			return state, true
		}
	}
	return LifecycleDraft, false
}

// MarshalText renders the state by name in JSON payloads
func (s LifecycleState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText accepts the state names produced by MarshalText
func (s *LifecycleState) UnmarshalText(text []byte) error {
	state, ok := ParseLifecycleState(string(text))
	if !ok {
		return fmt.Errorf("unknown lifecycle state %q", text)
	}
	*s = state
	return nil
}

// IsTerminated returns true once the contract has been explicitly terminated
func (c *Contract) IsTerminated() bool {
	return c.LifecycleState == LifecycleTerminated
}

// MaySubmit returns true if the contract can be sent for approval
func (c *Contract) MaySubmit() bool {
	return c.LifecycleState == LifecycleDraft
}

// MayApprove returns true if the contract is waiting for approval
func (c *Contract) MayApprove() bool {
	return c.LifecycleState == LifecycleChecking
}

// MayReject returns true if the contract is waiting for approval
func (c *Contract) MayReject() bool {
	return c.LifecycleState == LifecycleChecking
}

// MayExpire returns true if an active contract can be marked expired
func (c *Contract) MayExpire() bool {
	return c.LifecycleState == LifecycleActive
}

// MayRenew returns true if the contract term can be extended
func (c *Contract) MayRenew() bool {
	return c.LifecycleState == LifecycleActive || c.LifecycleState == LifecycleExpired
}

// MayTerminate returns true for every non-draft, non-terminated contract
func (c *Contract) MayTerminate() bool {
	return c.LifecycleState != LifecycleDraft && c.LifecycleState != LifecycleTerminated
}

// ContractResponse is the JSON response format for contracts
type ContractResponse struct {
	ID                uint            `json:"id"`
	BranchID          uint            `json:"branch_id"`
	CustomerID        uint            `json:"customer_id"`
	CustomerName      string          `json:"customer_name"`
	Name              string          `json:"name"`
	StartDate         *string         `json:"start_date"`
	SigningDate       *string         `json:"signing_date"`
	PaymentDayOfMonth int             `json:"payment_day_of_month"`
	PaymentPlanID     uint            `json:"payment_plan_id"`
	PaymentPlanName   string          `json:"payment_plan_name"`
	ContractTypeID    uint            `json:"contract_type_id"`
	ContractTypeName  string          `json:"contract_type_name"`
	NextPaymentDate   *string         `json:"next_payment_date"`
	ContractEndDate   *string         `json:"contract_end_date"`
	LastPaymentDate   *string         `json:"last_payment_date"`
	LifecycleState    string          `json:"lifecycle_state"`
	BasePrice         decimal.Decimal `json:"base_price"`
	PeriodPrice       decimal.Decimal `json:"period_price"`
	DepositAmount     decimal.Decimal `json:"deposit_amount"`
	PenaltyAmount     decimal.Decimal `json:"penalty_amount"`
	LateFeePercent    decimal.Decimal `json:"late_fee_percent"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ToResponse converts Contract to ContractResponse
func (c *Contract) ToResponse() ContractResponse {
	resp := ContractResponse{
		ID:                c.ID,
		BranchID:          c.BranchID,
		CustomerID:        c.CustomerID,
		CustomerName:      c.Customer.Name,
		Name:              c.Name,
		StartDate:         formatDate(c.StartDate),
		SigningDate:       formatDate(c.SigningDate),
		PaymentDayOfMonth: c.PaymentDayOfMonth,
		PaymentPlanID:     c.PaymentPlanID,
		ContractTypeID:    c.ContractTypeID,
		NextPaymentDate:   formatDate(c.NextPaymentDate),
		ContractEndDate:   formatDate(c.ContractEndDate),
		LastPaymentDate:   formatDate(c.LastPaymentDate),
		LifecycleState:    c.LifecycleState.String(),
		BasePrice:         c.BasePrice,
		PeriodPrice:       c.PeriodPrice,
		DepositAmount:     c.DepositAmount,
		PenaltyAmount:     c.PenaltyAmount,
		LateFeePercent:    c.LateFeePercent,
		UpdatedAt:         c.UpdatedAt,
	}

	if plan, ok := FindPaymentPlan(c.PaymentPlanID); ok {
		resp.PaymentPlanName = plan.Name
	}
	if ct, ok := FindContractType(c.ContractTypeID); ok {
		resp.ContractTypeName = ct.Name
	}

	return resp
}

// DateLayout is the wire format for date-only fields
const DateLayout = "2006-01-02"

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(DateLayout)
	return &s
}
