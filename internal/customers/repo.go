package customers

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/brewhouse-backend/internal/repo"
	"github.com/angelmondragon/brewhouse-backend/pkg/db/models"
)

// Repository exposes customer persistence operations.
type Repository struct {
	repo.Base
}

// NewRepository constructs a customers repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// List returns every customer ordered by id.
func (r *Repository) List(ctx context.Context) ([]models.Customer, error) {
	var rows []models.Customer
	if err := r.DB(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByID loads a customer by id.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Customer, error) {
	var customer models.Customer
	if err := r.DB(ctx).First(&customer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// EmailTaken reports whether another customer already uses email. The match
// is case-sensitive; excludeID skips the customer being updated.
func (r *Repository) EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	query := "email = ?"
	args := []any{email}
	if excludeID > 0 {
		query += " AND id <> ?"
		args = append(args, excludeID)
	}
	count, err := r.CountWhere(ctx, &models.Customer{}, query, args...)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts customer and populates its id and timestamps.
func (r *Repository) Create(ctx context.Context, customer *models.Customer) error {
	return r.DB(ctx).Create(customer).Error
}

// Update writes columns under a version compare-and-swap.
func (r *Repository) Update(ctx context.Context, id, expectedVersion int64, columns map[string]any) (int64, error) {
	return r.UpdateVersioned(ctx, &models.Customer{}, id, expectedVersion, columns)
}

// Delete removes the customer, reporting whether a row existed.
func (r *Repository) Delete(ctx context.Context, id int64) (bool, error) {
	res := r.DB(ctx).Delete(&models.Customer{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
