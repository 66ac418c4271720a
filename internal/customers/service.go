package customers

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/angelmondragon/brewhouse-backend/internal/repo"
	"github.com/angelmondragon/brewhouse-backend/pkg/db"
	pkgerrors "github.com/angelmondragon/brewhouse-backend/pkg/errors"
	"github.com/angelmondragon/brewhouse-backend/pkg/logger"
)

const (
	resourceCustomer = "customer"
	emailConstraint  = "ux_customer_email"
)

// Service exposes customer management operations.
type Service interface {
	ListCustomers(ctx context.Context) ([]CustomerDTO, error)
	GetCustomer(ctx context.Context, id int64) (*CustomerDTO, error)
	CreateCustomer(ctx context.Context, input CustomerInput) (*CustomerDTO, error)
	UpdateCustomer(ctx context.Context, id int64, input UpdateCustomerInput) (*CustomerDTO, error)
	DeleteCustomer(ctx context.Context, id int64) error
}

type service struct {
	repo *Repository
	logg *logger.Logger
}

// NewService constructs a customer service instance.
func NewService(repo *Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customer repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) ListCustomers(ctx context.Context) ([]CustomerDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list customers")
	}
	out := make([]CustomerDTO, 0, len(rows))
	for i := range rows {
		out = append(out, NewCustomerDTO(&rows[i]))
	}
	return out, nil
}

func (s *service) GetCustomer(ctx context.Context, id int64) (*CustomerDTO, error) {
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, id)
	}
	dto := NewCustomerDTO(customer)
	return &dto, nil
}

func (s *service) CreateCustomer(ctx context.Context, input CustomerInput) (*CustomerDTO, error) {
	if err := s.ensureEmailAvailable(ctx, input.Email, 0); err != nil {
		return nil, err
	}
	customer := input.toModel()
	if err := s.repo.Create(ctx, customer); err != nil {
		if db.IsUniqueViolation(err, emailConstraint) {
			return nil, duplicateEmail(input.Email)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert customer")
	}
	s.logg.Info(s.logg.WithResource(ctx, resourceCustomer, customer.ID), "customer created")
	dto := NewCustomerDTO(customer)
	return &dto, nil
}

func (s *service) UpdateCustomer(ctx context.Context, id int64, input UpdateCustomerInput) (*CustomerDTO, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, id)
	}
	if current.Email != input.Email {
		if err := s.ensureEmailAvailable(ctx, input.Email, id); err != nil {
			return nil, err
		}
	}
	expected := current.Version
	if input.Version != nil {
		expected = *input.Version
	}

	if _, err := s.repo.Update(ctx, id, expected, input.columns()); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, pkgerrors.NotFound(resourceCustomer, id)
		case errors.Is(err, repo.ErrStaleVersion):
			return nil, pkgerrors.New(pkgerrors.CodeOptimisticLock, fmt.Sprintf("customer %d was modified concurrently", id)).
				WithDetails(map[string]any{"resource": resourceCustomer, "id": id, "expectedVersion": expected})
		case db.IsUniqueViolation(err, emailConstraint):
			return nil, duplicateEmail(input.Email)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update customer")
	}

	return s.GetCustomer(ctx, id)
}

func (s *service) DeleteCustomer(ctx context.Context, id int64) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete customer")
	}
	if !deleted {
		return pkgerrors.NotFound(resourceCustomer, id)
	}
	s.logg.Info(s.logg.WithResource(ctx, resourceCustomer, id), "customer deleted")
	return nil
}

func (s *service) ensureEmailAvailable(ctx context.Context, email string, excludeID int64) error {
	taken, err := s.repo.EmailTaken(ctx, email, excludeID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check customer email")
	}
	if taken {
		return duplicateEmail(email)
	}
	return nil
}

func duplicateEmail(email string) error {
	return pkgerrors.New(pkgerrors.CodeConflict, "email already in use").
		WithDetails(map[string]string{"email": fmt.Sprintf("%s is already registered", email)})
}

func lookupError(err error, id int64) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.NotFound(resourceCustomer, id)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load customer")
}
