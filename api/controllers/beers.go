package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/brewhouse-backend/api/responses"
	"github.com/angelmondragon/brewhouse-backend/api/validators"
	"github.com/angelmondragon/brewhouse-backend/internal/beers"
	pkgerrors "github.com/angelmondragon/brewhouse-backend/pkg/errors"
	"github.com/angelmondragon/brewhouse-backend/pkg/logger"
)

const beerIDParam = "beerId"

// beerRequest is the create/update payload. id, createdDate and updatedDate
// are read-only and ignored so clients can send back a fetched beer.
type beerRequest struct {
	ID             *int64           `json:"id,omitempty"`
	Version        *int64           `json:"version,omitempty"`
	BeerName       string           `json:"beerName" validate:"required,max=255"`
	BeerStyle      string           `json:"beerStyle" validate:"required,max=255"`
	UPC            string           `json:"upc" validate:"required,max=255"`
	QuantityOnHand int              `json:"quantityOnHand" validate:"gte=0"`
	Price          *decimal.Decimal `json:"price" validate:"required,gt=0"`
	Description    *string          `json:"description,omitempty"`
	CreatedDate    *time.Time       `json:"createdDate,omitempty"`
	UpdatedDate    *time.Time       `json:"updatedDate,omitempty"`
}

// beerTextMax is the width of the beer_name, beer_style and upc columns.
const beerTextMax = 255

// toInput escapes the beer text fields and rejects any that outgrow their
// column once escaped.
func (r beerRequest) toInput() (beers.CreateBeerInput, error) {
	input := beers.CreateBeerInput{
		BeerName:       validators.EscapeText(r.BeerName),
		BeerStyle:      validators.EscapeText(r.BeerStyle),
		UPC:            validators.EscapeText(r.UPC),
		QuantityOnHand: r.QuantityOnHand,
		Price:          *r.Price,
		Description:    validators.EscapeOptional(r.Description),
	}
	var limits validators.EscapedLimits
	limits.Check("beerName", input.BeerName, beerTextMax)
	limits.Check("beerStyle", input.BeerStyle, beerTextMax)
	limits.Check("upc", input.UPC, beerTextMax)
	if err := limits.Err(); err != nil {
		return beers.CreateBeerInput{}, err
	}
	return input, nil
}

// ListBeers returns a page of the catalog, optionally filtered by beerName.
func ListBeers(svc beers.Service, maxPageSize int, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "beer service unavailable"))
			return
		}

		params, err := validators.ParsePageParams(r, maxPageSize)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListBeers(r.Context(), beers.ListBeersInput{
			BeerName: validators.EscapeText(r.URL.Query().Get("beerName")),
			Params:   params,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

func GetBeer(svc beers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathID(r, beerIDParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		beer, err := svc.GetBeer(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, beer)
	}
}

func CreateBeer(svc beers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req beerRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := req.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		beer, err := svc.CreateBeer(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteCreated(w, fmt.Sprintf("/api/v1/beers/%d", beer.ID), beer)
	}
}

// UpdateBeer replaces a beer. A version in the body must match the stored
// one.
func UpdateBeer(svc beers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathID(r, beerIDParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req beerRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := req.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		beer, err := svc.UpdateBeer(r.Context(), id, beers.UpdateBeerInput{
			CreateBeerInput: input,
			Version:         req.Version,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, beer)
	}
}

func DeleteBeer(svc beers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathID(r, beerIDParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteBeer(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteNoContent(w)
	}
}
