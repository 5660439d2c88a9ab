package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/dairyfarm/internal/domain/models"
)

// BalanceReader derives the live position of a day.
type BalanceReader interface {
	AvailableMilk(ctx context.Context, day time.Time) (models.DailyBalance, error)
}

// SummaryReader reads closed days.
type SummaryReader interface {
	Get(ctx context.Context, day time.Time) (models.ProductionSummary, error)
	Latest(ctx context.Context) (models.ProductionSummary, error)
}

// BalanceHandler serves /balance.
type BalanceHandler struct {
	ledger    BalanceReader
	summaries SummaryReader
	dates     Dates
	logger    *zap.Logger
}

// NewBalanceHandler constructs the HTTP handler adapter.
func NewBalanceHandler(ledger BalanceReader, summaries SummaryReader, dates Dates, logger *zap.Logger) *BalanceHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BalanceHandler{ledger: ledger, summaries: summaries, dates: dates, logger: logger}
}

// Get handles GET /balance?type=available|summary&date=. The summary view
// without a date returns the most recent close.
func (h *BalanceHandler) Get(c *gin.Context) {
	switch c.DefaultQuery("type", "available") {
	case "available":
		day, err := h.dates.ParseOrToday(c.Query("date"))
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		balance, err := h.ledger.AvailableMilk(c.Request.Context(), day)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, balance)
	case "summary":
		var (
			summary models.ProductionSummary
			err     error
		)
		if raw := c.Query("date"); raw != "" {
			day, perr := models.ParseDay(raw, h.dates.Calendar)
			if perr != nil {
				respondError(c, h.logger, perr)
				return
			}
			summary, err = h.summaries.Get(c.Request.Context(), day)
		} else {
			summary, err = h.summaries.Latest(c.Request.Context())
		}
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, summary)
	default:
		respondError(c, h.logger, models.Validationf("type must be available or summary"))
	}
}
