package repository

import (
	"context"

	"github.com/sjperalta/rentdesk-api/internal/models"
	"gorm.io/gorm"
)

// BranchRepository defines the interface for branch data access
type BranchRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Branch, error)
	FindAll(ctx context.Context) ([]models.Branch, error)
	UpdateTemplates(ctx context.Context, id uint, payment, renewal *string) error
}

type branchRepository struct {
	db *gorm.DB
}

// NewBranchRepository creates a new branch repository
func NewBranchRepository(db *gorm.DB) BranchRepository {
	return &branchRepository{db: db}
}

func (r *branchRepository) FindByID(ctx context.Context, id uint) (*models.Branch, error) {
	var branch models.Branch
	err := r.db.WithContext(ctx).First(&branch, id).Error
	if err != nil {
		return nil, err
	}
	return &branch, nil
}

func (r *branchRepository) FindAll(ctx context.Context) ([]models.Branch, error) {
	var branches []models.Branch
	err := r.db.WithContext(ctx).Order("id ASC").Find(&branches).Error
	return branches, err
}

// UpdateTemplates replaces the templates that are non-nil
func (r *branchRepository) UpdateTemplates(ctx context.Context, id uint, payment, renewal *string) error {
	updates := map[string]interface{}{}
	if payment != nil {
		updates["payment_template"] = *payment
	}
	if renewal != nil {
		updates["renewal_template"] = *renewal
	}
	if len(updates) == 0 {
		return nil
	}

	result := r.db.WithContext(ctx).
		Model(&models.Branch{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
