package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/dairyfarm/internal/domain/models"
	"github.com/mamadbah2/dairyfarm/internal/service/sales"
)

// SalesService records and lists sales.
type SalesService interface {
	Create(ctx context.Context, in sales.CreateInput) (models.SalesRecord, error)
	ListByDay(ctx context.Context, day time.Time) ([]models.SalesRecord, error)
}

// SalesHandler serves /sales.
type SalesHandler struct {
	svc    SalesService
	dates  Dates
	logger *zap.Logger
}

// NewSalesHandler constructs the HTTP handler adapter.
func NewSalesHandler(svc SalesService, dates Dates, logger *zap.Logger) *SalesHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SalesHandler{svc: svc, dates: dates, logger: logger}
}

type createSaleRequest struct {
	Date          string  `json:"date"`
	Quantity      float64 `json:"quantity" binding:"required"`
	PricePerLiter float64 `json:"pricePerLiter"`
	PaymentMethod string  `json:"paymentMethod"`
	CustomerName  string  `json:"customerName"`
}

// Create handles POST /sales.
func (h *SalesHandler) Create(c *gin.Context) {
	var req createSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, bindingError(err))
		return
	}
	var day time.Time
	if req.Date != "" {
		parsed, err := models.ParseDay(req.Date, h.dates.Calendar)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		day = parsed
	}
	user, _ := UserFrom(c)

	sale, err := h.svc.Create(c.Request.Context(), sales.CreateInput{
		Date:          day,
		Quantity:      req.Quantity,
		PricePerLiter: req.PricePerLiter,
		PaymentMethod: models.PaymentMethod(req.PaymentMethod),
		CustomerName:  req.CustomerName,
		SoldBy:        user.ID,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, sale)
}

// List handles GET /sales?date=.
func (h *SalesHandler) List(c *gin.Context) {
	day, err := h.dates.ParseOrToday(c.Query("date"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	items, err := h.svc.ListByDay(c.Request.Context(), day)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": models.FormatDay(day), "items": items})
}
