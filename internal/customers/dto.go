package customers

import (
	"time"

	"github.com/angelmondragon/brewhouse-backend/pkg/db/models"
)

// CustomerDTO is the customer payload returned to clients.
type CustomerDTO struct {
	ID           int64     `json:"id"`
	Version      int64     `json:"version"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        *string   `json:"phone,omitempty"`
	AddressLine1 string    `json:"addressLine1"`
	AddressLine2 *string   `json:"addressLine2,omitempty"`
	City         *string   `json:"city,omitempty"`
	State        *string   `json:"state,omitempty"`
	PostalCode   *string   `json:"postalCode,omitempty"`
	CreatedDate  time.Time `json:"createdDate"`
	UpdatedDate  time.Time `json:"updatedDate"`
}

// CustomerInput carries the full set of writable customer fields.
type CustomerInput struct {
	Name         string
	Email        string
	Phone        *string
	AddressLine1 string
	AddressLine2 *string
	City         *string
	State        *string
	PostalCode   *string
}

// UpdateCustomerInput replaces every writable field. Version, when set, is
// the version the caller last read.
type UpdateCustomerInput struct {
	CustomerInput
	Version *int64
}

func (in CustomerInput) toModel() *models.Customer {
	return &models.Customer{
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
		AddressLine1: in.AddressLine1,
		AddressLine2: in.AddressLine2,
		City:         in.City,
		State:        in.State,
		PostalCode:   in.PostalCode,
	}
}

func (in CustomerInput) columns() map[string]any {
	return map[string]any{
		"name":          in.Name,
		"email":         in.Email,
		"phone":         in.Phone,
		"address_line1": in.AddressLine1,
		"address_line2": in.AddressLine2,
		"city":          in.City,
		"state":         in.State,
		"postal_code":   in.PostalCode,
	}
}

func NewCustomerDTO(c *models.Customer) CustomerDTO {
	return CustomerDTO{
		ID:           c.ID,
		Version:      c.Version,
		Name:         c.Name,
		Email:        c.Email,
		Phone:        c.Phone,
		AddressLine1: c.AddressLine1,
		AddressLine2: c.AddressLine2,
		City:         c.City,
		State:        c.State,
		PostalCode:   c.PostalCode,
		CreatedDate:  c.CreatedDate,
		UpdatedDate:  c.UpdatedDate,
	}
}
