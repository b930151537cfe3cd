package repository

import (
	"context"
	"time"

	"github.com/sjperalta/rentdesk-api/internal/models"
	"gorm.io/gorm"
)

// ContractRepository defines the interface for contract data access
type ContractRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Contract, error)
	FindByIDWithCustomer(ctx context.Context, id uint) (*models.Contract, error)
	List(ctx context.Context, query *ContractQuery) ([]models.Contract, int64, error)
	ListForSweep(ctx context.Context, branchID uint) ([]models.Contract, error)
	UpdateSchedule(ctx context.Context, contract *models.Contract) (bool, error)
	ApplyRenewal(ctx context.Context, contract *models.Contract, from models.LifecycleState) (bool, error)
	UpdateDerivedDates(ctx context.Context, id uint, next, end *time.Time) error
	UpdateLifecycle(ctx context.Context, id uint, from, to models.LifecycleState) (bool, error)
}

// ContractQuery extends ListQuery with contract-specific filters
type ContractQuery struct {
	*ListQuery
	BranchID uint
	States   []models.LifecycleState
}

var contractSortColumns = map[string]string{
	"id":                "contracts.id",
	"name":              "contracts.name",
	"start_date":        "contracts.start_date",
	"next_payment_date": "contracts.next_payment_date",
	"contract_end_date": "contracts.contract_end_date",
	"created_at":        "contracts.created_at",
}

type contractRepository struct {
	db *gorm.DB
}

// NewContractRepository creates a new contract repository
func NewContractRepository(db *gorm.DB) ContractRepository {
	return &contractRepository{db: db}
}

func (r *contractRepository) FindByID(ctx context.Context, id uint) (*models.Contract, error) {
	var contract models.Contract
	err := r.db.WithContext(ctx).First(&contract, id).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *contractRepository) FindByIDWithCustomer(ctx context.Context, id uint) (*models.Contract, error) {
	var contract models.Contract
	err := r.db.WithContext(ctx).
		Joins("Customer").
		First(&contract, id).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *contractRepository) List(ctx context.Context, query *ContractQuery) ([]models.Contract, int64, error) {
	var contracts []models.Contract
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Contract{})

	if query.BranchID > 0 {
		db = db.Where("contracts.branch_id = ?", query.BranchID)
	}
	if len(query.States) > 0 {
		db = db.Where("contracts.lifecycle_state IN ?", query.States)
	}

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Joins("LEFT JOIN customers ON customers.id = contracts.customer_id").
			Where("contracts.name ILIKE ? OR customers.name ILIKE ?", search, search)
	}

	// Count total using a separate session so the main query is not altered by Count()
	countDB := db.Session(&gorm.Session{})
	if err := countDB.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if column, ok := contractSortColumns[query.SortBy]; ok {
		order := column
		if query.SortDir == "desc" {
			order += " DESC"
		}
		db = db.Order(order)
	} else {
		db = db.Order("contracts.next_payment_date ASC NULLS LAST").Order("contracts.id ASC")
	}

	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.Preload("Customer").Find(&contracts).Error
	if err != nil {
		return nil, 0, err
	}
	return contracts, total, nil
}

// ListForSweep loads every non-terminated contract of a branch with its
// customer. branchID 0 means all branches.
func (r *contractRepository) ListForSweep(ctx context.Context, branchID uint) ([]models.Contract, error) {
	var contracts []models.Contract

	db := r.db.WithContext(ctx).
		Where("lifecycle_state <> ?", models.LifecycleTerminated)
	if branchID > 0 {
		db = db.Where("branch_id = ?", branchID)
	}

	err := db.
		Preload("Customer").
		Order("id ASC").
		Find(&contracts).Error
	return contracts, err
}

// UpdateSchedule writes the billing inputs and derived dates of a contract
// that is not terminated. Lifecycle columns are never touched. It reports
// whether a row changed.
func (r *contractRepository) UpdateSchedule(ctx context.Context, contract *models.Contract) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Contract{}).
		Where("id = ? AND lifecycle_state <> ?", contract.ID, models.LifecycleTerminated).
		Updates(scheduleColumns(contract))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ApplyRenewal writes the new term and lifecycle state in one statement, only
// if the contract is still in the from state.
func (r *contractRepository) ApplyRenewal(ctx context.Context, contract *models.Contract, from models.LifecycleState) (bool, error) {
	updates := scheduleColumns(contract)
	updates["lifecycle_state"] = contract.LifecycleState

	result := r.db.WithContext(ctx).
		Model(&models.Contract{}).
		Where("id = ? AND lifecycle_state = ?", contract.ID, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func scheduleColumns(c *models.Contract) map[string]interface{} {
	return map[string]interface{}{
		"start_date":           c.StartDate,
		"payment_day_of_month": c.PaymentDayOfMonth,
		"payment_plan_id":      c.PaymentPlanID,
		"contract_type_id":     c.ContractTypeID,
		"next_payment_date":    c.NextPaymentDate,
		"contract_end_date":    c.ContractEndDate,
	}
}

// UpdateDerivedDates writes only the dates that are non-nil
func (r *contractRepository) UpdateDerivedDates(ctx context.Context, id uint, next, end *time.Time) error {
	updates := map[string]interface{}{}
	if next != nil {
		updates["next_payment_date"] = *next
	}
	if end != nil {
		updates["contract_end_date"] = *end
	}
	if len(updates) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).
		Model(&models.Contract{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// UpdateLifecycle moves a contract from one state to another only if it is
// still in the expected state. It reports whether a row changed.
func (r *contractRepository) UpdateLifecycle(ctx context.Context, id uint, from, to models.LifecycleState) (bool, error) {
	updates := map[string]interface{}{"lifecycle_state": to}
	if to == models.LifecycleTerminated {
		updates["terminated_at"] = time.Now()
	}

	result := r.db.WithContext(ctx).
		Model(&models.Contract{}).
		Where("id = ? AND lifecycle_state = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
