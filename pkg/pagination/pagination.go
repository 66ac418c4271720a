package pagination

import (
	"fmt"
	"strings"

	"gorm.io/gorm/clause"
)

const (
	// DefaultSize is the standard page size when a size is not provided.
	DefaultSize = 20
	// MaxSize caps how many rows any page query can request.
	MaxSize = 100
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Order is one sort term.
type Order struct {
	Property  string
	Direction Direction
}

// Sort is an ordered list of sort terms; earlier terms take precedence.
type Sort []Order

// Params holds offset pagination inputs from controllers or services.
type Params struct {
	Page int
	Size int
	Sort Sort
}

// Normalize clamps page to >= 0 and size to (0, maxSize], substituting
// defaultSize for a missing size.
func (p Params) Normalize(defaultSize, maxSize int) Params {
	if defaultSize <= 0 {
		defaultSize = DefaultSize
	}
	if maxSize <= 0 {
		maxSize = MaxSize
	}
	if p.Page < 0 {
		p.Page = 0
	}
	if p.Size <= 0 {
		p.Size = defaultSize
	}
	if p.Size > maxSize {
		p.Size = maxSize
	}
	return p
}

// Offset is the number of rows to skip for the current page.
func (p Params) Offset() int {
	return p.Page * p.Size
}

// ParseSort reads repeated sort parameters of the form
// "property[,property...][,asc|desc]". A trailing direction applies to every
// property listed in the same parameter. Empty parameters are ignored; a
// blank property inside a parameter, as in ",desc", is an error.
func ParseSort(values []string) (Sort, error) {
	var out Sort
	for _, raw := range values {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		parts := strings.Split(raw, ",")
		direction := Asc
		if n := len(parts); n > 1 {
			switch strings.ToLower(strings.TrimSpace(parts[n-1])) {
			case string(Asc):
				parts = parts[:n-1]
			case string(Desc):
				direction = Desc
				parts = parts[:n-1]
			}
		}
		for _, part := range parts {
			property := strings.TrimSpace(part)
			if property == "" {
				return nil, fmt.Errorf("sort %q: empty property", raw)
			}
			out = append(out, Order{Property: property, Direction: direction})
		}
	}
	return out, nil
}

// Rename returns a copy of s with every term whose property equals from
// rewritten to to. Direction and position are preserved.
func (s Sort) Rename(from, to string) Sort {
	if s == nil {
		return nil
	}
	out := make(Sort, len(s))
	for i, order := range s {
		if order.Property == from {
			order.Property = to
		}
		out[i] = order
	}
	return out
}

// UnknownPropertyError is returned when a sort property is not whitelisted.
type UnknownPropertyError struct {
	Property string
}

func (e *UnknownPropertyError) Error() string {
	return fmt.Sprintf("unknown sort property %q", e.Property)
}

// Clauses maps each term through columns (property -> column name) and
// returns gorm ordering clauses.
func (s Sort) Clauses(columns map[string]string) ([]clause.OrderByColumn, error) {
	out := make([]clause.OrderByColumn, 0, len(s))
	for _, order := range s {
		column, ok := columns[order.Property]
		if !ok {
			return nil, &UnknownPropertyError{Property: order.Property}
		}
		out = append(out, clause.OrderByColumn{
			Column: clause.Column{Name: column},
			Desc:   order.Direction == Desc,
		})
	}
	return out, nil
}

// WithTieBreaker appends an ascending term on column unless order already
// sorts by it, so rows with equal sort values keep one position across pages.
func WithTieBreaker(order []clause.OrderByColumn, column string) []clause.OrderByColumn {
	for _, term := range order {
		if term.Column.Name == column {
			return order
		}
	}
	out := make([]clause.OrderByColumn, 0, len(order)+1)
	out = append(out, order...)
	return append(out, clause.OrderByColumn{Column: clause.Column{Name: column}})
}

// Page is one slice of a larger result set.
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
}

// NewPage assembles a page from the rows of the requested slice and the total
// row count.
func NewPage[T any](content []T, params Params, total int64) Page[T] {
	if content == nil {
		content = []T{}
	}
	totalPages := 0
	if params.Size > 0 {
		totalPages = int((total + int64(params.Size) - 1) / int64(params.Size))
	}
	return Page[T]{
		Content:       content,
		TotalElements: total,
		TotalPages:    totalPages,
		Number:        params.Page,
		Size:          params.Size,
	}
}

// MapPage converts the content of a page while keeping its counters.
func MapPage[T, U any](page Page[T], fn func(T) U) Page[U] {
	content := make([]U, 0, len(page.Content))
	for _, item := range page.Content {
		content = append(content, fn(item))
	}
	return Page[U]{
		Content:       content,
		TotalElements: page.TotalElements,
		TotalPages:    page.TotalPages,
		Number:        page.Number,
		Size:          page.Size,
	}
}
