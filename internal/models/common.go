package models

import (
	"strings"
	"time"
)

// Customer is read-only from the billing core's perspective
type Customer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BranchID  uint      `gorm:"not null;index" json:"branch_id"`
	Name      string    `gorm:"not null" json:"name"`
	ChannelID string    `gorm:"column:channel_id;index" json:"channel_id"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for Customer
func (Customer) TableName() string {
	return "customers"
}

// HasChannel returns true if the customer can receive chat notifications
func (c *Customer) HasChannel() bool {
	return strings.TrimSpace(c.ChannelID) != ""
}

// Branch holds the branch-scoped notification templates
type Branch struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"not null" json:"name"`
	PaymentTemplate string    `gorm:"type:text" json:"payment_template"`
	RenewalTemplate string    `gorm:"type:text" json:"renewal_template"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName specifies the table name for Branch
func (Branch) TableName() string {
	return "branches"
}

// Default templates used when a branch has not configured its own
const (
	DefaultPaymentTemplate = "[name] 您好，您的專案 [project_name] 下次繳費日為 [next_pay_day]，應繳金額 [amount] 元。"
	DefaultRenewalTemplate = "[name] 您好，您的專案 [project_name] 將於 [end_day] 到期，請與我們聯繫續約事宜。"
)

// PaymentTemplateOrDefault returns the branch payment template, or the default one
func (b *Branch) PaymentTemplateOrDefault() string {
	if strings.TrimSpace(b.PaymentTemplate) == "" {
		return DefaultPaymentTemplate
	}
	return b.PaymentTemplate
}

// RenewalTemplateOrDefault returns the branch renewal template, or the default one
func (b *Branch) RenewalTemplateOrDefault() string {
	if strings.TrimSpace(b.RenewalTemplate) == "" {
		return DefaultRenewalTemplate
	}
	return b.RenewalTemplate
}
