package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/angelmondragon/brewhouse-backend/api/responses"
	"github.com/angelmondragon/brewhouse-backend/api/validators"
	"github.com/angelmondragon/brewhouse-backend/internal/customers"
	"github.com/angelmondragon/brewhouse-backend/pkg/logger"
)

const customerIDParam = "customerId"

type customerRequest struct {
	ID           *int64     `json:"id,omitempty"`
	Version      *int64     `json:"version,omitempty"`
	Name         string     `json:"name" validate:"required,max=120"`
	Email        string     `json:"email" validate:"required,email,max=255"`
	Phone        *string    `json:"phone,omitempty" validate:"omitempty,max=40"`
	AddressLine1 string     `json:"addressLine1" validate:"required,max=200"`
	AddressLine2 *string    `json:"addressLine2,omitempty" validate:"omitempty,max=200"`
	City         *string    `json:"city,omitempty" validate:"omitempty,max=120"`
	State        *string    `json:"state,omitempty" validate:"omitempty,max=80"`
	PostalCode   *string    `json:"postalCode,omitempty" validate:"omitempty,max=20"`
	CreatedDate  *time.Time `json:"createdDate,omitempty"`
	UpdatedDate  *time.Time `json:"updatedDate,omitempty"`
}

// toInput trims every field. Values are stored as sent so the max= tags
// match the column widths.
func (r customerRequest) toInput() customers.CustomerInput {
	return customers.CustomerInput{
		Name:         validators.SanitizeString(r.Name, 120),
		Email:        validators.SanitizeString(r.Email, 255),
		Phone:        validators.SanitizeOptional(r.Phone, 40),
		AddressLine1: validators.SanitizeString(r.AddressLine1, 200),
		AddressLine2: validators.SanitizeOptional(r.AddressLine2, 200),
		City:         validators.SanitizeOptional(r.City, 120),
		State:        validators.SanitizeOptional(r.State, 80),
		PostalCode:   validators.SanitizeOptional(r.PostalCode, 20),
	}
}

func ListCustomers(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ListCustomers(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func GetCustomer(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathID(r, customerIDParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customer, err := svc.GetCustomer(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, customer)
	}
}

func CreateCustomer(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req customerRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customer, err := svc.CreateCustomer(r.Context(), req.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteCreated(w, fmt.Sprintf("/api/v1/customers/%d", customer.ID), customer)
	}
}

func UpdateCustomer(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathID(r, customerIDParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req customerRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customer, err := svc.UpdateCustomer(r.Context(), id, customers.UpdateCustomerInput{
			CustomerInput: req.toInput(),
			Version:       req.Version,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, customer)
	}
}

func DeleteCustomer(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathID(r, customerIDParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteCustomer(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteNoContent(w)
	}
}
