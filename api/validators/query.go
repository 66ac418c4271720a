package validators

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	pkgerrors "github.com/angelmondragon/brewhouse-backend/pkg/errors"
	"github.com/angelmondragon/brewhouse-backend/pkg/pagination"
)

func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be numeric").WithDetails(map[string]any{"field": key})
	}
	if value < min || value > max {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter out of range").WithDetails(map[string]any{"field": key, "min": min, "max": max})
	}
	return value, nil
}

// ParsePageParams reads page, size and repeated sort parameters. A missing
// size is left at zero so each service applies its own default.
func ParsePageParams(r *http.Request, maxSize int) (pagination.Params, error) {
	if maxSize <= 0 {
		maxSize = pagination.MaxSize
	}
	page, err := ParseQueryInt(r, "page", 0, 0, math.MaxInt32)
	if err != nil {
		return pagination.Params{}, err
	}
	size, err := ParseQueryInt(r, "size", 0, 1, maxSize)
	if err != nil {
		return pagination.Params{}, err
	}
	sort, err := pagination.ParseSort(r.URL.Query()["sort"])
	if err != nil {
		return pagination.Params{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sort").WithDetails(map[string]any{"field": "sort"})
	}
	return pagination.Params{Page: page, Size: size, Sort: sort}, nil
}

// ParsePathID reads a positive integer route parameter.
func ParsePathID(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	if raw == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, name+" is required").WithDetails(map[string]string{name: "is required"})
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid "+name).WithDetails(map[string]string{name: "must be a positive integer"})
	}
	return id, nil
}
