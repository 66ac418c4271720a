package beers

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/angelmondragon/brewhouse-backend/internal/repo"
	"github.com/angelmondragon/brewhouse-backend/pkg/config"
	"github.com/angelmondragon/brewhouse-backend/pkg/db"
	"github.com/angelmondragon/brewhouse-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/brewhouse-backend/pkg/errors"
	"github.com/angelmondragon/brewhouse-backend/pkg/logger"
	"github.com/angelmondragon/brewhouse-backend/pkg/pagination"
)

const resourceBeer = "beer"

// Service exposes catalog operations.
type Service interface {
	ListBeers(ctx context.Context, input ListBeersInput) (BeerPage, error)
	GetBeer(ctx context.Context, id int64) (*BeerDTO, error)
	CreateBeer(ctx context.Context, input CreateBeerInput) (*BeerDTO, error)
	UpdateBeer(ctx context.Context, id int64, input UpdateBeerInput) (*BeerDTO, error)
	DeleteBeer(ctx context.Context, id int64) error
}

type service struct {
	repo  Repository
	cache Cache
	logg  *logger.Logger
	pages config.PaginationConfig
}

// NewService constructs the catalog service.
func NewService(repo Repository, cache Cache, logg *logger.Logger, pages config.PaginationConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("beer repository required")
	}
	if cache == nil {
		return nil, fmt.Errorf("beer cache required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, cache: cache, logg: logg, pages: pages}, nil
}

func (s *service) ListBeers(ctx context.Context, input ListBeersInput) (BeerPage, error) {
	params := input.Params.Normalize(s.pages.DefaultSize, s.pages.MaxSize)
	order, err := params.Sort.Clauses(sortColumns)
	if err != nil {
		return BeerPage{}, sortError(err)
	}

	rows, total, err := s.repo.List(ctx, input.BeerName, params, order)
	if err != nil {
		return BeerPage{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list beers")
	}
	page := pagination.NewPage(rows, params, total)
	return pagination.MapPage(page, func(b models.Beer) BeerDTO { return NewBeerDTO(&b) }), nil
}

// GetBeer reads through the cache. Cache failures degrade to a database read.
func (s *service) GetBeer(ctx context.Context, id int64) (*BeerDTO, error) {
	cached, ok, err := s.cache.Get(ctx, id)
	if err != nil {
		s.logg.WarnErr(s.logg.WithResource(ctx, resourceBeer, id), "beer cache read failed", err)
	}
	if ok {
		return cached, nil
	}

	beer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, id)
	}
	dto := NewBeerDTO(beer)
	if err := s.cache.Set(ctx, dto); err != nil {
		s.logg.WarnErr(s.logg.WithResource(ctx, resourceBeer, id), "beer cache write failed", err)
	}
	return &dto, nil
}

func (s *service) CreateBeer(ctx context.Context, input CreateBeerInput) (*BeerDTO, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	beer := &models.Beer{
		BeerName:       input.BeerName,
		BeerStyle:      input.BeerStyle,
		UPC:            input.UPC,
		QuantityOnHand: input.QuantityOnHand,
		Price:          input.Price,
		Description:    input.Description,
	}
	if err := s.repo.Create(ctx, beer); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert beer")
	}
	s.logg.Info(s.logg.WithResource(ctx, resourceBeer, beer.ID), "beer created")
	dto := NewBeerDTO(beer)
	return &dto, nil
}

// UpdateBeer replaces the mutable fields under a version compare-and-swap.
// Without an explicit version the currently stored one is expected.
func (s *service) UpdateBeer(ctx context.Context, id int64, input UpdateBeerInput) (*BeerDTO, error) {
	if err := validateInput(input.CreateBeerInput); err != nil {
		return nil, err
	}
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, id)
	}
	expected := current.Version
	if input.Version != nil {
		expected = *input.Version
	}

	_, err = s.repo.Update(ctx, id, expected, map[string]any{
		"beer_name":        input.BeerName,
		"beer_style":       input.BeerStyle,
		"upc":              input.UPC,
		"quantity_on_hand": input.QuantityOnHand,
		"price":            input.Price,
		"description":      input.Description,
	})
	if err != nil {
		return nil, updateError(err, id, expected)
	}
	s.invalidate(ctx, id)

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, id)
	}
	dto := NewBeerDTO(updated)
	return &dto, nil
}

// DeleteBeer refuses to remove a beer that order lines still reference.
func (s *service) DeleteBeer(ctx context.Context, id int64) error {
	refs, err := s.repo.CountOrderLines(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count order lines")
	}
	if refs > 0 {
		return referencedError(id, refs)
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return referencedError(id, refs)
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete beer")
	}
	if !deleted {
		return pkgerrors.NotFound(resourceBeer, id)
	}
	s.invalidate(ctx, id)
	s.logg.Info(s.logg.WithResource(ctx, resourceBeer, id), "beer deleted")
	return nil
}

func (s *service) invalidate(ctx context.Context, id int64) {
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logg.WarnErr(s.logg.WithResource(ctx, resourceBeer, id), "beer cache invalidation failed", err)
	}
}

func validateInput(input CreateBeerInput) error {
	details := map[string]string{}
	if input.BeerName == "" {
		details["beerName"] = "is required"
	}
	if input.BeerStyle == "" {
		details["beerStyle"] = "is required"
	}
	if input.UPC == "" {
		details["upc"] = "is required"
	}
	if input.QuantityOnHand < 0 {
		details["quantityOnHand"] = "must be at least 0"
	}
	if !input.Price.IsPositive() {
		details["price"] = "must be greater than 0"
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return nil
}

func lookupError(err error, id int64) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.NotFound(resourceBeer, id)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load beer")
}

func updateError(err error, id, expected int64) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return pkgerrors.NotFound(resourceBeer, id)
	case errors.Is(err, repo.ErrStaleVersion):
		return pkgerrors.New(pkgerrors.CodeOptimisticLock, fmt.Sprintf("beer %d was modified concurrently", id)).
			WithDetails(map[string]any{"resource": resourceBeer, "id": id, "expectedVersion": expected})
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update beer")
}

func referencedError(id, refs int64) error {
	return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("beer %d is referenced by order lines", id)).
		WithDetails(map[string]any{"resource": resourceBeer, "id": id, "orderLines": refs})
}

func sortError(err error) error {
	var unknown *pagination.UnknownPropertyError
	if errors.As(err, &unknown) {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"sort": unknown.Error()})
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sort")
}
