package responses

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/brewhouse-backend/pkg/errors"
	"github.com/angelmondragon/brewhouse-backend/pkg/logger"
	"github.com/angelmondragon/brewhouse-backend/pkg/types"
)

func TestWriteSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccess(w, map[string]string{"hello": "world"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body types.SuccessEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "world", body.Data.(map[string]any)["hello"])
}

func TestWriteCreatedSetsLocation(t *testing.T) {
	w := httptest.NewRecorder()
	WriteCreated(w, "/api/v1/beers/7", map[string]int{"id": 7})

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "/api/v1/beers/7", w.Header().Get("Location"))
}

func TestWriteErrorProblemShape(t *testing.T) {
	cases := []struct {
		err        error
		status     int
		problem    string
		hasDetails bool
	}{
		{
			err:        pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(map[string]string{"beerName": "is required"}),
			status:     http.StatusBadRequest,
			problem:    "about:blank#validation-error",
			hasDetails: true,
		},
		{err: pkgerrors.NotFound("beer", 9), status: http.StatusNotFound, problem: "about:blank#not-found"},
		{
			err:        pkgerrors.New(pkgerrors.CodeBusinessRule, "trackingNumber and carrier are required").WithDetails(map[string]string{"carrier": "x"}),
			status:     http.StatusConflict,
			problem:    "about:blank#business-rule",
			hasDetails: true,
		},
		{err: pkgerrors.New(pkgerrors.CodeOptimisticLock, "stale"), status: http.StatusConflict, problem: "about:blank#optimistic-lock"},
		{err: pkgerrors.New(pkgerrors.CodeConflict, "email already in use"), status: http.StatusConflict, problem: "about:blank#conflict"},
		{err: pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("dial tcp"), "db: load beer"), status: http.StatusServiceUnavailable, problem: "about:blank#dependency"},
	}

	for _, tc := range cases {
		t.Run(tc.problem, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(context.Background(), nil, w, tc.err)

			require.Equal(t, tc.status, w.Code)
			assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

			var body types.ErrorEnvelope
			require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
			assert.Equal(t, tc.problem, body.Error.Type)
			assert.Equal(t, tc.status, body.Error.Status)
			assert.NotEmpty(t, body.Error.Title)
			assert.Equal(t, tc.hasDetails, body.Error.Details != nil)
		})
	}
}

func TestWriteErrorHidesInternalMessages(t *testing.T) {
	w := httptest.NewRecorder()
	var logs bytes.Buffer
	logg := logger.New(logger.Options{Output: &logs})
	WriteError(context.Background(), logg, w, errors.New("pq: password authentication failed"))

	require.Equal(t, http.StatusInternalServerError, w.Code)

	var body types.ErrorEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, string(pkgerrors.CodeInternal), body.Error.Code)
	assert.Equal(t, "internal server error", body.Error.Message)
	assert.Nil(t, body.Error.Details)
	assert.Contains(t, logs.String(), "request.error")
	assert.Contains(t, logs.String(), "password authentication failed")
}
