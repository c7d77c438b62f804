package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"insurance-marketplace/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		kind apperror.Kind
		want int
	}{
		{apperror.KindNotFound, http.StatusNotFound},
		{apperror.KindPermission, http.StatusForbidden},
		{apperror.KindUnavailable, http.StatusServiceUnavailable},
		{apperror.KindValidation, http.StatusBadRequest},
		{apperror.KindConflict, http.StatusConflict},
		{apperror.KindInternal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(string(tc.kind), func(t *testing.T) {
			err := fmt.Errorf("wrapped: %w", apperror.New(tc.kind, "op", "boom"))
			assert.Equal(t, tc.want, StatusFor(err))
		})
	}
	assert.Equal(t, http.StatusInternalServerError, StatusFor(errors.New("plain")))
}

func TestFromErrorHidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	FromError(rec, errors.New("db password leaked"), "Failed to load")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "Failed to load", body.Message)
	assert.Nil(t, body.Error)
}

func TestFromErrorNotFound(t *testing.T) {
	rec := httptest.NewRecorder()
	FromError(rec, apperror.New(apperror.KindNotFound, "agents.FindByID", "agent not found"), "Agent not found")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "agent not found")
}
