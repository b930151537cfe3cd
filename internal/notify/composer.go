package notify

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/rentdesk-api/internal/models"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var ErrMissingChannelIdentifier = errors.New("customer has no messaging channel identifier")

// Message is the rendered text plus its destination
type Message struct {
	ChannelID  string `json:"channel_id"`
	Kind       Kind   `json:"kind"`
	ContractID uint   `json:"contract_id"`
	CustomerID uint   `json:"customer_id"`
	Text       string `json:"text"`
}

// Formatter renders dates and amounts for a locale
type Formatter struct {
	printer    *message.Printer
	dateLayout string
}

var dateLayoutsByBase = map[string]string{
	"zh": "2006/1/2",
	"ja": "2006/1/2",
	"en": "1/2/2006",
}

// NewFormatter builds a formatter for a BCP 47 locale such as "zh-TW".
// Unparseable locales fall back to Traditional Chinese.
func NewFormatter(locale string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.TraditionalChinese
	}

	layout := models.DateLayout
	if base, _ := tag.Base(); dateLayoutsByBase[base.String()] != "" {
		layout = dateLayoutsByBase[base.String()]
	}

	return &Formatter{
		printer:    message.NewPrinter(tag),
		dateLayout: layout,
	}
}

// Date formats a date the way the locale writes short dates
func (f *Formatter) Date(t time.Time) string {
	return t.Format(f.dateLayout)
}

// Amount formats money as grouped digits without a currency symbol.
// Whole amounts have no decimals; others keep two.
func (f *Formatter) Amount(d decimal.Decimal) string {
	if d.Equal(d.Truncate(0)) {
		return f.printer.Sprintf("%d", d.IntPart())
	}
	return f.printer.Sprintf("%.2f", d.Round(2).InexactFloat64())
}

// Composer turns a contract and its customer into a Message
type Composer struct {
	formatter *Formatter
}

// NewComposer creates a composer using the given formatter
func NewComposer(formatter *Formatter) *Composer {
	return &Composer{formatter: formatter}
}

// Fields collects the placeholder values available for a contract
func (c *Composer) Fields(customer *models.Customer, contract *models.Contract) map[string]string {
	fields := map[string]string{
		TokenProjectName: contract.Name,
		TokenAmount:      c.formatter.Amount(contract.PeriodPrice),
	}
	if customer != nil {
		fields[TokenName] = customer.Name
	}
	if contract.NextPaymentDate != nil {
		fields[TokenNextPayDay] = c.formatter.Date(*contract.NextPaymentDate)
	}
	if contract.ContractEndDate != nil {
		fields[TokenEndDay] = c.formatter.Date(*contract.ContractEndDate)
	}
	return fields
}

// Compose renders the template for a contract. It performs no delivery and
// fails with ErrMissingChannelIdentifier when the customer cannot be reached.
func (c *Composer) Compose(kind Kind, template string, customer *models.Customer, contract *models.Contract) (Message, error) {
	if customer == nil || !customer.HasChannel() {
		customerID := contract.CustomerID
		return Message{}, fmt.Errorf("customer %d: %w", customerID, ErrMissingChannelIdentifier)
	}

	return Message{
		ChannelID:  customer.ChannelID,
		Kind:       kind,
		ContractID: contract.ID,
		CustomerID: customer.ID,
		Text:       RenderTemplate(kind, template, c.Fields(customer, contract)),
	}, nil
}
