package report

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spendlens/spendlens/internal/core/aggregation"
	apierrors "github.com/spendlens/spendlens/internal/core/errors"
	"github.com/spendlens/spendlens/internal/core/ledger"
)

// RegisterRoutes registers the report API routes on the given router.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	reports := r.Group("/v1/reports")
	{
		reports.POST("/groupagg", s.HandleGroupAgg)
		reports.GET("/series", s.HandleSeries)
	}
}

// groupAggBody is the wire form of GroupAggRequest; bounds are parsed with ledger.ParseTime.
type groupAggBody struct {
	From     string   `json:"from"`
	To       string   `json:"to"`
	Tags     []string `json:"tags"`
	Grouping string   `json:"grouping"`
	Agg      struct {
		Amount    string `json:"amount"`
		AmountCur string `json:"amount_cur"`
	} `json:"agg"`
	Retag bool `json:"retag"`
}

// HandleGroupAgg handles POST /v1/reports/groupagg.
func (s *Service) HandleGroupAgg(c *gin.Context) {
	var body groupAggBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, apierrors.ErrorResponse{
			ErrorType: apierrors.HttpInvalidJsonError,
			Message:   "Invalid JSON body",
			Details:   err.Error(),
		})
		return
	}

	from, to, err := parseBounds(body.From, body.To)
	if err != nil {
		invalidRequest(c, err)
		return
	}

	req := GroupAggRequest{
		From:     from,
		To:       to,
		Tags:     body.Tags,
		Grouping: body.Grouping,
		Retag:    body.Retag,
	}
	req.Agg.Amount = body.Agg.Amount
	req.Agg.AmountCur = body.Agg.AmountCur
	if req.Agg.Amount == "" && req.Agg.AmountCur != "" {
		req.Agg.Amount = aggregation.OpSum
	}
	if req.Agg.AmountCur == "" && req.Agg.Amount != "" {
		req.Agg.AmountCur = aggregation.OpSum
	}

	resp, err := s.GroupAgg(c.Request.Context(), req)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleSeries handles GET /v1/reports/series
// Query parameters: from, to, unit, tags (comma separated), field, op
func (s *Service) HandleSeries(c *gin.Context) {
	from, to, err := parseBounds(c.Query("from"), c.Query("to"))
	if err != nil {
		invalidRequest(c, err)
		return
	}

	req := SeriesRequest{
		From:     from,
		To:       to,
		Unit:     c.Query("unit"),
		Field:    c.Query("field"),
		Operator: c.Query("op"),
	}
	for _, name := range strings.Split(c.Query("tags"), ",") {
		if name = strings.TrimSpace(name); name != "" {
			req.Tags = append(req.Tags, name)
		}
	}

	resp, err := s.Series(c.Request.Context(), req)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Service) writeError(c *gin.Context, err error) {
	if errors.Is(err, ErrInvalidQuery) {
		invalidRequest(c, err)
		return
	}
	status, body := apierrors.FromError(err)
	if status == http.StatusInternalServerError {
		slog.Error("[Report] Request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, body)
}

func invalidRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, apierrors.ErrorResponse{
		ErrorType: apierrors.HttpInvalidRequestError,
		Message:   err.Error(),
	})
}

func parseBounds(fromStr, toStr string) (from, to time.Time, err error) {
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
