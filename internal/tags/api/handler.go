package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	apierrors "github.com/spendlens/spendlens/internal/core/errors"
	"github.com/spendlens/spendlens/internal/core/ledger"
	"github.com/spendlens/spendlens/internal/core/storage"
	"github.com/spendlens/spendlens/internal/core/tagging"
	"github.com/spendlens/spendlens/internal/tags"
)

// maxPreviewSample caps the matched ids echoed back by a preview.
const maxPreviewSample = 20

// Handler handles tag management HTTP requests.
type Handler struct {
	registry *tags.Registry
	store    storage.TransactionStore
	tagger   *tagging.Tagger
}

// NewHandler creates a new tag API handler.
func NewHandler(reg *tags.Registry, store storage.TransactionStore, tagger *tagging.Tagger) *Handler {
	return &Handler{
		registry: reg,
		store:    store,
		tagger:   tagger,
	}
}

// PutTagRequest is the request body for PUT /v1/tags/{name}.
type PutTagRequest struct {
	Conditions any `json:"conditions"`
}

// PreviewRequest is the optional request body for POST /v1/tags/{name}/preview.
// Without Conditions the stored definition is previewed.
type PreviewRequest struct {
	Conditions any    `json:"conditions,omitempty"`
	From       string `json:"from,omitempty"`
	To         string `json:"to,omitempty"`
}

// TagResponse is the response body for tag operations.
type TagResponse struct {
	Name        string   `json:"name"`
	Conditions  any      `json:"conditions"`
	Fingerprint string   `json:"fingerprint"`
	UpdatedAt   string   `json:"updated_at"`
	DependsOn   []string `json:"depends_on,omitempty"`
}

// PreviewResponse reports how many stored transactions a rule selects.
type PreviewResponse struct {
	Name       string   `json:"name"`
	Matched    int      `json:"matched"`
	Total      int      `json:"total"`
	MatchedIDs []string `json:"matched_ids"`
}

// HandleList handles GET /v1/tags.
func (h *Handler) HandleList(c *gin.Context) {
	defs, err := h.registry.List(c.Request.Context())
	if err != nil {
		writeError(c, "list tags", err)
		return
	}

	responses := make([]*TagResponse, len(defs))
	for i, def := range defs {
		responses[i] = toResponse(def, tagging.Tag{})
	}
	c.JSON(http.StatusOK, responses)
}

// HandleGet handles GET /v1/tags/{name}.
func (h *Handler) HandleGet(c *gin.Context) {
	def, tag, err := h.registry.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		writeError(c, "get tag", err)
		return
	}
	c.JSON(http.StatusOK, toResponse(def, tag))
}

// HandlePut handles PUT /v1/tags/{name}: create or replace.
func (h *Handler) HandlePut(c *gin.Context) {
	var req PutTagRequest
	if err := decodeJSON(c.Request.Body, &req); err != nil || req.Conditions == nil {
		c.JSON(http.StatusBadRequest, apierrors.ErrorResponse{
			ErrorType: apierrors.HttpInvalidJsonError,
			Message:   "body must be a JSON object with a conditions field",
		})
		return
	}

	name := c.Param("name")
	def, err := h.registry.Save(c.Request.Context(), name, req.Conditions)
	if err != nil {
		writeError(c, "save tag", err)
		return
	}
	_, tag, err := h.registry.Get(c.Request.Context(), name)
	if err != nil {
		writeError(c, "get tag", err)
		return
	}

	slog.Info("[TagAPI] Saved tag", "name", def.Name, "fingerprint", def.Fingerprint)
	c.JSON(http.StatusOK, toResponse(def, tag))
}

// HandleDelete handles DELETE /v1/tags/{name}.
func (h *Handler) HandleDelete(c *gin.Context) {
	if err := h.registry.Delete(c.Request.Context(), c.Param("name")); err != nil {
		writeError(c, "delete tag", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// HandlePreview handles POST /v1/tags/{name}/preview (dry-run).
// Stored transactions are loaded, never modified.
func (h *Handler) HandlePreview(c *gin.Context) {
	var req PreviewRequest
	if err := decodeJSON(c.Request.Body, &req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, apierrors.ErrorResponse{
			ErrorType: apierrors.HttpInvalidJsonError,
			Message:   "Invalid JSON body",
		})
		return
	}

	from, to, err := parseRange(req.From, req.To)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierrors.ErrorResponse{
			ErrorType: apierrors.HttpInvalidRequestError,
			Message:   err.Error(),
		})
		return
	}

	name := c.Param("name")
	var tag tagging.Tag
	if req.Conditions != nil {
		tag, err = h.registry.Compile(&tags.Definition{Name: name, Conditions: req.Conditions})
	} else {
		_, tag, err = h.registry.Get(c.Request.Context(), name)
	}
	if err != nil {
		writeError(c, "compile tag", err)
		return
	}

	txns, err := h.store.Load(c.Request.Context(), from, to)
	if err != nil {
		writeError(c, "load transactions", err)
		return
	}

	mask := h.tagger.MaskFor(tag.Rule, txns)
	resp := PreviewResponse{Name: name, Total: len(txns), MatchedIDs: []string{}}
	for i, hit := range mask {
		if !hit {
			continue
		}
		resp.Matched++
		if len(resp.MatchedIDs) < maxPreviewSample {
			resp.MatchedIDs = append(resp.MatchedIDs, txns[i].ID)
		}
	}
	c.JSON(http.StatusOK, resp)
}

func toResponse(def *tags.Definition, tag tagging.Tag) *TagResponse {
	return &TagResponse{
		Name:        def.Name,
		Conditions:  def.Conditions,
		Fingerprint: def.Fingerprint,
		UpdatedAt:   def.UpdatedAt.Format(time.RFC3339),
		DependsOn:   tag.DependsOn(),
	}
}

// decodeJSON keeps numeric literals as json.Number so rule fingerprints
// match the text the client sent.
func decodeJSON(body io.Reader, v any) error {
	dec := json.NewDecoder(body)
	dec.UseNumber()
	return dec.Decode(v)
}

func parseRange(fromStr, toStr string) (from, to time.Time, err error) {
	if fromStr != "" {
		if from, err = ledger.ParseTime(fromStr); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if toStr != "" {
		if to, err = ledger.ParseTime(toStr); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return from, to, nil
}

func writeError(c *gin.Context, action string, err error) {
	status, body := apierrors.FromError(err)
	if status == http.StatusInternalServerError {
		slog.Error("[TagAPI] Request failed", "action", action, "error", err)
	}
	c.JSON(status, body)
}
