package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/dairyfarm/internal/domain/models"
	"github.com/mamadbah2/dairyfarm/internal/service/closing"
)

// Closer runs and reads day-end closes.
type Closer interface {
	Close(ctx context.Context, req closing.Request) (models.ProductionSummary, error)
	Get(ctx context.Context, day time.Time) (models.ProductionSummary, error)
	Latest(ctx context.Context) (models.ProductionSummary, error)
}

// PeriodReporter rolls closed days up over a range.
type PeriodReporter interface {
	PeriodReport(ctx context.Context, from, to time.Time) (models.PeriodReport, error)
}

// SummaryHandler serves /production/day-end-summary.
type SummaryHandler struct {
	closer   Closer
	reporter PeriodReporter
	dates    Dates
	logger   *zap.Logger
}

// NewSummaryHandler constructs the HTTP handler adapter.
func NewSummaryHandler(closer Closer, reporter PeriodReporter, dates Dates, logger *zap.Logger) *SummaryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SummaryHandler{closer: closer, reporter: reporter, dates: dates, logger: logger}
}

type closeDayRequest struct {
	Date string `json:"date"`
}

// Close handles POST /production/day-end-summary, a manual close. An empty
// body closes today.
func (h *SummaryHandler) Close(c *gin.Context) {
	var req closeDayRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, h.logger, bindingError(err))
		return
	}
	day, err := h.dates.ParseOrToday(req.Date)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	user, _ := UserFrom(c)

	summary, err := h.closer.Close(c.Request.Context(), closing.Request{
		Date:    day,
		Trigger: models.TriggerManual,
		ActorID: user.ID,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Get handles GET /production/day-end-summary: ?date= for one day, ?from=&to=
// for a period roll-up, nothing for the latest close.
func (h *SummaryHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	from, to := c.Query("from"), c.Query("to")

	switch {
	case c.Query("date") != "":
		day, err := models.ParseDay(c.Query("date"), h.dates.Calendar)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		summary, err := h.closer.Get(ctx, day)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, summary)
	case from != "" || to != "":
		fromDay, err := models.ParseDay(from, h.dates.Calendar)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		toDay, err := h.dates.ParseOrToday(to)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		report, err := h.reporter.PeriodReport(ctx, fromDay, toDay)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, report)
	default:
		summary, err := h.closer.Latest(ctx)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, summary)
	}
}
