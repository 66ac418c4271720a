package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/brewhouse-backend/pkg/errors"
	"github.com/angelmondragon/brewhouse-backend/pkg/pagination"
)

type itemBody struct {
	BeerID   int64 `json:"beerId" validate:"required,gt=0"`
	Quantity int   `json:"quantity" validate:"gt=0"`
}

type orderBody struct {
	PaymentAmount *decimal.Decimal `json:"paymentAmount" validate:"required,gte=0"`
	Items         []itemBody       `json:"items" validate:"required,min=1,dive"`
}

func decode(t *testing.T, body string) error {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	var dest orderBody
	return DecodeJSONBody(req, &dest)
}

func detailsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
	details, ok := typed.Details().(map[string]string)
	require.True(t, ok, "details %T", typed.Details())
	return details
}

func TestDecodeJSONBodyValid(t *testing.T) {
	require.NoError(t, decode(t, `{"paymentAmount": 12.50, "items": [{"beerId": 1, "quantity": 2}]}`))
	require.NoError(t, decode(t, `{"paymentAmount": "0", "items": [{"beerId": 1, "quantity": 1}]}`))
}

func TestDecodeJSONBodyFieldErrors(t *testing.T) {
	details := detailsOf(t, decode(t, `{"paymentAmount": -1, "items": []}`))
	assert.Equal(t, "must be at least 0", details["paymentAmount"])
	assert.Contains(t, details, "items")

	details = detailsOf(t, decode(t, `{"paymentAmount": 1, "items": [{"beerId": 0, "quantity": 0}]}`))
	assert.Equal(t, "is required", details["items[0].beerId"])
	assert.Equal(t, "must be greater than 0", details["items[0].quantity"])

	details = detailsOf(t, decode(t, `{"items": [{"beerId": 1, "quantity": 1}]}`))
	assert.Equal(t, "is required", details["paymentAmount"])
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	err := decode(t, `{"paymentAmount": 1, "items": [{"beerId": 1, "quantity": 1}], "discount": 5}`)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestParsePageParams(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?page=2&size=5&sort=beerName,desc&sort=id", nil)
	params, err := ParsePageParams(req, 100)
	require.NoError(t, err)
	assert.Equal(t, 2, params.Page)
	assert.Equal(t, 5, params.Size)
	assert.Equal(t, pagination.Sort{
		{Property: "beerName", Direction: pagination.Desc},
		{Property: "id", Direction: pagination.Asc},
	}, params.Sort)

	params, err = ParsePageParams(httptest.NewRequest(http.MethodGet, "/", nil), 100)
	require.NoError(t, err)
	assert.Zero(t, params.Size)

	_, err = ParsePageParams(httptest.NewRequest(http.MethodGet, "/?size=500", nil), 100)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = ParsePageParams(httptest.NewRequest(http.MethodGet, "/?page=-1", nil), 100)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = ParsePageParams(httptest.NewRequest(http.MethodGet, "/?sort=,desc", nil), 100)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Equal(t, map[string]any{"field": "sort"}, pkgerrors.As(err).Details())
}

func TestParsePathID(t *testing.T) {
	withParam := func(value string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("beerId", value)
		return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	id, err := ParsePathID(withParam("42"), "beerId")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"", "abc", "0", "-3"} {
		_, err := ParsePathID(withParam(bad), "beerId")
		require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), bad)
	}
}

func TestEscapeText(t *testing.T) {
	assert.Equal(t, "&lt;b&gt;Stout&lt;/b&gt; &amp; co", EscapeText("  <b>Stout</b> & co "))
	assert.Nil(t, EscapeOptional(nil))
	in := "O'Hara"
	assert.Equal(t, "O&#39;Hara", *EscapeOptional(&in))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "A&B <x>", SanitizeString("  A&B <x> ", 0))
	assert.Equal(t, "PO-1", SanitizeString(" PO-123 ", 4))
	assert.Equal(t, "héll", SanitizeString("héllo", 4))
	assert.Nil(t, SanitizeOptional(nil, 10))
	in := " O'Hara "
	assert.Equal(t, "O'Hara", *SanitizeOptional(&in, 10))
}

func TestEscapedLimits(t *testing.T) {
	var limits EscapedLimits
	limits.Check("beerName", EscapeText(strings.Repeat("&", 51)), 255)
	require.NoError(t, limits.Err())

	limits.Check("beerStyle", EscapeText(strings.Repeat("&", 52)), 255)
	err := limits.Err()
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	details, ok := pkgerrors.As(err).Details().(map[string]string)
	require.True(t, ok)
	assert.Contains(t, details, "beerStyle")
	assert.NotContains(t, details, "beerName")
}
