package errors

import (
	stderrors "errors"
	"net/http"

	"github.com/spendlens/spendlens/internal/core/aggregation"
	"github.com/spendlens/spendlens/internal/core/grouping"
	"github.com/spendlens/spendlens/internal/core/ledger"
	"github.com/spendlens/spendlens/internal/core/rule"
	"github.com/spendlens/spendlens/internal/core/storage"
	"github.com/spendlens/spendlens/internal/core/tagging"
	"github.com/spendlens/spendlens/internal/tags"
)

const (
	HttpInternalError         = "internal_error"
	HttpInvalidJsonError      = "invalid_json"
	HttpInvalidRequestError   = "invalid_request"
	HttpTagNotFoundError      = "tag_not_found"
	HttpSchemaValidationError = "schema_validation_failed"
	HttpInvalidRuleError      = "invalid_rule"
	HttpTagOrderError         = "tag_order"
	HttpInvalidGroupingError  = "invalid_grouping"
	HttpDuplicateTransaction  = "duplicate_transaction"
)

// ErrorResponse is the error response body for every API.
type ErrorResponse struct {
	ErrorType string      `json:"error_type"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}

// Detailer surfaces structured validation details for API error responses.
type Detailer interface {
	Details() map[string]interface{}
}

// FromError maps a domain error to its HTTP status and response body.
// Anything unrecognized is a 500 with a generic message.
func FromError(err error) (int, ErrorResponse) {
	var details interface{}
	var d Detailer
	if stderrors.As(err, &d) {
		if m := d.Details(); len(m) > 0 {
			details = m
		}
	}

	switch {
	case stderrors.Is(err, tags.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{ErrorType: HttpTagNotFoundError, Message: err.Error()}
	case stderrors.Is(err, storage.ErrDuplicate):
		return http.StatusConflict, ErrorResponse{ErrorType: HttpDuplicateTransaction, Message: err.Error()}
	case stderrors.Is(err, ledger.ErrSchemaValidation):
		return http.StatusBadRequest, ErrorResponse{ErrorType: HttpSchemaValidationError, Message: err.Error(), Details: details}
	case stderrors.Is(err, rule.ErrMalformedRule),
		stderrors.Is(err, rule.ErrUnknownComparator),
		stderrors.Is(err, rule.ErrUnknownTransformation),
		stderrors.Is(err, tagging.ErrInvalidTag):
		return http.StatusBadRequest, ErrorResponse{ErrorType: HttpInvalidRuleError, Message: err.Error()}
	case stderrors.Is(err, tagging.ErrTagCycle), stderrors.Is(err, tagging.ErrTagOrder):
		return http.StatusConflict, ErrorResponse{ErrorType: HttpTagOrderError, Message: err.Error()}
	case stderrors.Is(err, grouping.ErrInvalidGrouping), stderrors.Is(err, aggregation.ErrUnknownOperator):
		return http.StatusBadRequest, ErrorResponse{ErrorType: HttpInvalidGroupingError, Message: err.Error()}
	}
	return http.StatusInternalServerError, ErrorResponse{ErrorType: HttpInternalError, Message: "internal server error"}
}
