package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sjperalta/rentdesk-api/internal/models"
	"github.com/sjperalta/rentdesk-api/internal/notify"
	"github.com/sjperalta/rentdesk-api/internal/repository"
)

// BranchTemplates is the template configuration of one branch
type BranchTemplates struct {
	BranchID         uint                     `json:"branch_id"`
	PaymentTemplate  string                   `json:"payment_template"`
	RenewalTemplate  string                   `json:"renewal_template"`
	PaymentIsDefault bool                     `json:"payment_is_default"`
	RenewalIsDefault bool                     `json:"renewal_is_default"`
	Vocabulary       map[notify.Kind][]string `json:"vocabulary"`
}

// TemplateUpdate replaces the templates that are non-nil
type TemplateUpdate struct {
	PaymentTemplate *string `json:"payment_template"`
	RenewalTemplate *string `json:"renewal_template"`
}

// TemplateWarnings lists tokens a template uses outside its vocabulary.
// They are saved as-is and render verbatim.
type TemplateWarnings map[notify.Kind][]string

// Preview is a rendered template plus its warnings
type Preview struct {
	Text          string   `json:"text"`
	UnknownTokens []string `json:"unknown_tokens"`
}

type TemplateService struct {
	branches  repository.BranchRepository
	contracts repository.ContractRepository
	composer  *notify.Composer
	auditSvc  *AuditService
}

func NewTemplateService(branches repository.BranchRepository, contracts repository.ContractRepository, composer *notify.Composer, auditSvc *AuditService) *TemplateService {
	return &TemplateService{
		branches:  branches,
		contracts: contracts,
		composer:  composer,
		auditSvc:  auditSvc,
	}
}

// Get returns the effective templates of a branch
func (s *TemplateService) Get(ctx context.Context, branchID uint) (*BranchTemplates, error) {
	branch, err := s.branches.FindByID(ctx, branchID)
	if err != nil {
		return nil, translateRepoError(err)
	}
	return toBranchTemplates(branch), nil
}

// Update stores new templates. Blank templates are rejected; unknown tokens
// are accepted and reported back.
func (s *TemplateService) Update(ctx context.Context, branchID, actorID uint, update TemplateUpdate) (*BranchTemplates, TemplateWarnings, error) {
	if update.PaymentTemplate == nil && update.RenewalTemplate == nil {
		return nil, nil, fmt.Errorf("%w: no template given", ErrInvalidInput)
	}

	warnings := TemplateWarnings{}
	for kind, tmpl := range map[notify.Kind]*string{
		notify.KindPayment: update.PaymentTemplate,
		notify.KindRenewal: update.RenewalTemplate,
	} {
		if tmpl == nil {
			continue
		}
		if strings.TrimSpace(*tmpl) == "" {
			return nil, nil, fmt.Errorf("%w: %s template", ErrEmptyTemplate, kind)
		}
		if unknown := notify.UnknownTokens(kind, *tmpl); len(unknown) > 0 {
			warnings[kind] = unknown
		}
	}

	if err := s.branches.UpdateTemplates(ctx, branchID, update.PaymentTemplate, update.RenewalTemplate); err != nil {
		return nil, nil, translateRepoError(err)
	}

	s.auditSvc.Log(ctx, actorID, AuditUpdateTemplates, "Branch", branchID,
		fmt.Sprintf("payment updated: %t, renewal updated: %t", update.PaymentTemplate != nil, update.RenewalTemplate != nil))

	templates, err := s.Get(ctx, branchID)
	if err != nil {
		return nil, nil, err
	}
	return templates, warnings, nil
}

// Preview renders a template with explicit field values, sending nothing
func (s *TemplateService) Preview(kind notify.Kind, template string, fields map[string]string) Preview {
	return Preview{
		Text:          notify.RenderTemplate(kind, template, fields),
		UnknownTokens: nonNil(notify.UnknownTokens(kind, template)),
	}
}

// PreviewForContract renders a template with the values of a stored contract
func (s *TemplateService) PreviewForContract(ctx context.Context, kind notify.Kind, template string, contractID uint) (*Preview, error) {
	contract, err := s.contracts.FindByIDWithCustomer(ctx, contractID)
	if err != nil {
		return nil, translateRepoError(err)
	}

	var customer *models.Customer
	if contract.Customer.ID != 0 {
		customer = &contract.Customer
	}
	preview := s.Preview(kind, template, s.composer.Fields(customer, contract))
	return &preview, nil
}

func toBranchTemplates(b *models.Branch) *BranchTemplates {
	return &BranchTemplates{
		BranchID:         b.ID,
		PaymentTemplate:  b.PaymentTemplateOrDefault(),
		RenewalTemplate:  b.RenewalTemplateOrDefault(),
		PaymentIsDefault: strings.TrimSpace(b.PaymentTemplate) == "",
		RenewalIsDefault: strings.TrimSpace(b.RenewalTemplate) == "",
		Vocabulary: map[notify.Kind][]string{
			notify.KindPayment: notify.Vocabulary(notify.KindPayment),
			notify.KindRenewal: notify.Vocabulary(notify.KindRenewal),
		},
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
