package beers

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/brewhouse-backend/pkg/db/models"
	"github.com/angelmondragon/brewhouse-backend/pkg/pagination"
)

// BeerDTO is the catalog payload returned to clients and stored in the cache.
type BeerDTO struct {
	ID             int64           `json:"id"`
	Version        int64           `json:"version"`
	BeerName       string          `json:"beerName"`
	BeerStyle      string          `json:"beerStyle"`
	UPC            string          `json:"upc"`
	QuantityOnHand int             `json:"quantityOnHand"`
	Price          decimal.Decimal `json:"price"`
	Description    *string         `json:"description,omitempty"`
	CreatedDate    time.Time       `json:"createdDate"`
	UpdatedDate    time.Time       `json:"updatedDate"`
}

// CreateBeerInput holds the validated payload to create a beer.
type CreateBeerInput struct {
	BeerName       string
	BeerStyle      string
	UPC            string
	QuantityOnHand int
	Price          decimal.Decimal
	Description    *string
}

// UpdateBeerInput replaces every mutable field. Version, when set, is the
// version the caller last read.
type UpdateBeerInput struct {
	CreateBeerInput
	Version *int64
}

// ListBeersInput filters the catalog by a case-insensitive name fragment.
type ListBeersInput struct {
	BeerName string
	Params   pagination.Params
}

// BeerPage is one page of catalog entries.
type BeerPage = pagination.Page[BeerDTO]

func NewBeerDTO(beer *models.Beer) BeerDTO {
	return BeerDTO{
		ID:             beer.ID,
		Version:        beer.Version,
		BeerName:       beer.BeerName,
		BeerStyle:      beer.BeerStyle,
		UPC:            beer.UPC,
		QuantityOnHand: beer.QuantityOnHand,
		Price:          beer.Price,
		Description:    beer.Description,
		CreatedDate:    beer.CreatedDate,
		UpdatedDate:    beer.UpdatedDate,
	}
}

// sortColumns whitelists the sortable properties.
var sortColumns = map[string]string{
	"id":             "id",
	"beerName":       "beer_name",
	"beerStyle":      "beer_style",
	"upc":            "upc",
	"quantityOnHand": "quantity_on_hand",
	"price":          "price",
	"createdDate":    "created_date",
	"updatedDate":    "updated_date",
}
