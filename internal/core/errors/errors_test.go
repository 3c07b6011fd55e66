package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/spendlens/spendlens/internal/core/aggregation"
	"github.com/spendlens/spendlens/internal/core/grouping"
	"github.com/spendlens/spendlens/internal/core/ledger"
	"github.com/spendlens/spendlens/internal/core/rule"
	"github.com/spendlens/spendlens/internal/core/storage"
	"github.com/spendlens/spendlens/internal/core/tagging"
	"github.com/spendlens/spendlens/internal/tags"
	"github.com/stretchr/testify/require"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"not found", fmt.Errorf("get: %w", tags.ErrNotFound), http.StatusNotFound, HttpTagNotFoundError},
		{"unknown field", ledger.NewUnknownFieldError("amout"), http.StatusBadRequest, HttpSchemaValidationError},
		{"unknown comparator", fmt.Errorf("conjunction 0: %w", rule.ErrUnknownComparator), http.StatusBadRequest, HttpInvalidRuleError},
		{"malformed", rule.ErrMalformedRule, http.StatusBadRequest, HttpInvalidRuleError},
		{"cycle", tagging.ErrTagCycle, http.StatusConflict, HttpTagOrderError},
		{"grouping", grouping.ErrInvalidGrouping, http.StatusBadRequest, HttpInvalidGroupingError},
		{"operator", aggregation.ErrUnknownOperator, http.StatusBadRequest, HttpInvalidGroupingError},
		{"duplicate", fmt.Errorf("%w: t1", storage.ErrDuplicate), http.StatusConflict, HttpDuplicateTransaction},
		{"other", fmt.Errorf("connection refused"), http.StatusInternalServerError, HttpInternalError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, body := FromError(tc.err)
			require.Equal(t, tc.wantStatus, status)
			require.Equal(t, tc.wantType, body.ErrorType)
		})
	}
}

func TestFromError_ValidationDetails(t *testing.T) {
	_, body := FromError(ledger.NewUnknownFieldError("amout"))
	require.Equal(t, map[string]interface{}{"field": "amout"}, body.Details)

	_, body = FromError(fmt.Errorf("boom"))
	require.Equal(t, "internal server error", body.Message)
	require.Nil(t, body.Details)
}
