package ingestion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	httperr "github.com/spendlens/spendlens/internal/core/errors"
	"github.com/spendlens/spendlens/internal/core/ledger"
	"github.com/spendlens/spendlens/internal/core/storage"
	"github.com/spendlens/spendlens/internal/transactions"
)

const (
	msgReadBodyFailed       = "Failed to read request body"
	msgInvalidJSON          = "Body must be a JSON array of transaction records"
	msgEmptyBatch           = "At least one transaction record is required"
	msgTagFailed            = "Failed to tag transactions"
	msgPersistFailed        = "Failed to persist transactions"
	msgLoadFailed           = "Failed to load transactions"
	msgDuplicateTransaction = "Transaction already exists"
)

// ingestionError carries the structured HTTP error shape from a helper back to the handler.
type ingestionError struct {
	statusCode int
	errorType  string
	message    string
	details    interface{}
}

func (e *ingestionError) Error() string {
	return e.message
}

// IngestResponse is returned for an accepted batch.
type IngestResponse struct {
	Status   string         `json:"status"`
	Accepted int            `json:"accepted"`
	Matched  map[string]int `json:"matched,omitempty"`
}

// ListResponse is the body of GET /v1/transactions.
type ListResponse struct {
	Count        int                  `json:"count"`
	Transactions []ledger.Transaction `json:"transactions"`
}

// IngestHandler handles POST /v1/transactions. The batch is stored all-or-nothing.
func (s *Service) IngestHandler(c *gin.Context) {
	recs, payloadSize, ierr := s.parseRecords(c)
	if ierr != nil {
		writeError(c, ierr)
		return
	}

	txns, ierr := validateRecords(recs)
	if ierr != nil {
		writeError(c, ierr)
		return
	}

	slog.Info("[Ingestion] Received batch", "records", len(txns), "payload_size", payloadSize)

	matched, ierr := s.tagRecords(c.Request.Context(), txns)
	if ierr != nil {
		writeError(c, ierr)
		return
	}

	if ierr := s.persistRecords(c.Request.Context(), txns); ierr != nil {
		writeError(c, ierr)
		return
	}

	c.JSON(http.StatusCreated, IngestResponse{Status: "created", Accepted: len(txns), Matched: matched})
}

// ListHandler handles GET /v1/transactions?from=&to=&tags=a,b.
func (s *Service) ListHandler(c *gin.Context) {
	var from, to time.Time
	var err error
	if v := c.Query("from"); v != "" {
		if from, err = ledger.ParseTime(v); err != nil {
			writeError(c, badRequest("invalid from: "+err.Error()))
			return
		}
	}
	if v := c.Query("to"); v != "" {
		if to, err = ledger.ParseTime(v); err != nil {
			writeError(c, badRequest("invalid to: "+err.Error()))
			return
		}
	}

	txns, err := s.store.Load(c.Request.Context(), from, to)
	if err != nil {
		slog.Error("[Ingestion] Failed to load transactions", "error", err)
		writeError(c, &ingestionError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgLoadFailed,
		})
		return
	}

	set := transactions.New(txns)
	if names := splitTags(c.Query("tags")); len(names) > 0 {
		set = set.FilterContainingTag(names...)
	}
	c.JSON(http.StatusOK, ListResponse{Count: set.Size(), Transactions: set.Records()})
}

// parseRecords reads the body under the size limit and decodes it as a list of records.
// Numbers stay json.Number so amounts reach the decimal parser unrounded.
func (s *Service) parseRecords(c *gin.Context) ([]map[string]any, int, *ingestionError) {
	maxBytes := int64(s.maxBodySizeBytes)
	bodyBytes, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBytes+1))
	if err != nil {
		slog.Error("[Ingestion] Failed to read request body", "error", err)
		return nil, 0, &ingestionError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgReadBodyFailed,
		}
	}

	if int64(len(bodyBytes)) > maxBytes {
		slog.Warn("[Ingestion] Request body exceeds maximum size", "size", len(bodyBytes), "max", maxBytes)
		return nil, len(bodyBytes), &ingestionError{
			statusCode: http.StatusRequestEntityTooLarge,
			errorType:  httperr.HttpInvalidJsonError,
			message:    "Request body exceeds maximum allowed size",
			details: map[string]interface{}{
				"max_size_mb": maxBytes / (1024 * 1024),
			},
		}
	}

	dec := json.NewDecoder(bytes.NewReader(bodyBytes))
	dec.UseNumber()
	var recs []map[string]any
	if err := dec.Decode(&recs); err != nil {
		slog.Warn("[Ingestion] Invalid JSON body received", "error", err, "payload_size", len(bodyBytes))
		return nil, len(bodyBytes), &ingestionError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpInvalidJsonError,
			message:    msgInvalidJSON,
		}
	}
	if len(recs) == 0 {
		return nil, len(bodyBytes), badRequest(msgEmptyBatch)
	}
	return recs, len(bodyBytes), nil
}

// validateRecords converts the batch at the schema boundary. Every failing record is reported.
func validateRecords(recs []map[string]any) ([]ledger.Transaction, *ingestionError) {
	txns, err := ledger.FromRecords(recs)
	if err == nil {
		return txns, nil
	}

	slog.Warn("[Ingestion] Schema validation failed", "records", len(recs), "error", err)
	ierr := &ingestionError{
		statusCode: http.StatusBadRequest,
		errorType:  httperr.HttpSchemaValidationError,
		message:    err.Error(),
	}
	var d httperr.Detailer
	if errors.As(err, &d) {
		ierr.details = d.Details()
	}
	return nil, ierr
}

// tagRecords applies every stored tag in dependency order. Without a registry rows keep
// the tags they arrived with.
func (s *Service) tagRecords(ctx context.Context, txns []ledger.Transaction) (map[string]int, *ingestionError) {
	if s.registry == nil {
		return nil, nil
	}

	ordered, err := s.registry.Tags(ctx)
	if err == nil {
		var matched map[string]int
		if matched, err = s.tagger.ApplyAll(ordered, txns, true); err == nil {
			return matched, nil
		}
	}

	status, body := httperr.FromError(err)
	if status == http.StatusInternalServerError {
		slog.Error("[Ingestion] Failed to tag transactions", "error", err)
		body.Message = msgTagFailed
	}
	return nil, &ingestionError{
		statusCode: status,
		errorType:  body.ErrorType,
		message:    body.Message,
		details:    body.Details,
	}
}

// persistRecords saves the batch to the backing store.
func (s *Service) persistRecords(ctx context.Context, txns []ledger.Transaction) *ingestionError {
	if err := s.store.Save(ctx, txns); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			slog.Info("[Ingestion] Duplicate transaction rejected", "error", err)
			return &ingestionError{
				statusCode: http.StatusConflict,
				errorType:  httperr.HttpDuplicateTransaction,
				message:    msgDuplicateTransaction,
				details:    map[string]interface{}{"cause": err.Error()},
			}
		}

		slog.Error("[Ingestion] Failed to persist transactions", "error", err, "records", len(txns))
		return &ingestionError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgPersistFailed,
		}
	}
	return nil
}

func badRequest(msg string) *ingestionError {
	return &ingestionError{
		statusCode: http.StatusBadRequest,
		errorType:  httperr.HttpInvalidRequestError,
		message:    msg,
	}
}

func splitTags(raw string) []string {
	var names []string
	for _, n := range strings.Split(raw, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return names
}

// writeError serializes an ingestionError as the JSON HTTP response.
func writeError(c *gin.Context, err *ingestionError) {
	c.JSON(err.statusCode, httperr.ErrorResponse{
		ErrorType: err.errorType,
		Message:   err.message,
		Details:   err.details,
	})
}
