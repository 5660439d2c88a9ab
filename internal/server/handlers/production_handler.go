package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/dairyfarm/internal/domain/models"
	"github.com/mamadbah2/dairyfarm/internal/service/production"
)

// ProductionService is the record store surface the HTTP layer uses.
type ProductionService interface {
	Create(ctx context.Context, in production.CreateInput) (models.ProductionRecord, error)
	Update(ctx context.Context, in production.UpdateInput) (models.ProductionRecord, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (models.ProductionRecord, error)
	List(ctx context.Context, filter models.ProductionFilter) (models.ProductionPage, error)
}

// ProductionHandler serves /production.
type ProductionHandler struct {
	svc    ProductionService
	dates  Dates
	logger *zap.Logger
}

// NewProductionHandler constructs the HTTP handler adapter.
func NewProductionHandler(svc ProductionService, dates Dates, logger *zap.Logger) *ProductionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductionHandler{svc: svc, dates: dates, logger: logger}
}

// Morning and evening are pointers so an explicit 0 passes "required".
type createProductionRequest struct {
	AnimalID        string   `json:"animalId" binding:"required"`
	Date            string   `json:"date" binding:"required"`
	MorningQuantity *float64 `json:"morningQuantity" binding:"required"`
	EveningQuantity *float64 `json:"eveningQuantity" binding:"required"`
	CalfQuantity    float64  `json:"calfQuantity"`
	PoshoQuantity   float64  `json:"poshoQuantity"`
	Notes           string   `json:"notes"`
}

type updateProductionRequest struct {
	MorningQuantity *float64 `json:"morningQuantity"`
	EveningQuantity *float64 `json:"eveningQuantity"`
	CalfQuantity    *float64 `json:"calfQuantity"`
	PoshoQuantity   *float64 `json:"poshoQuantity"`
	Notes           *string  `json:"notes"`
}

// Create handles POST /production.
func (h *ProductionHandler) Create(c *gin.Context) {
	var req createProductionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, bindingError(err))
		return
	}
	day, err := models.ParseDay(req.Date, h.dates.Calendar)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	user, _ := UserFrom(c)

	rec, err := h.svc.Create(c.Request.Context(), production.CreateInput{
		AnimalID: req.AnimalID,
		Date:     day,
		Quantities: models.ProductionQuantities{
			Morning: *req.MorningQuantity,
			Evening: *req.EveningQuantity,
			Calf:    req.CalfQuantity,
			Posho:   req.PoshoQuantity,
		},
		Notes:      req.Notes,
		RecordedBy: user.ID,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// Update handles PUT /production?id=.
func (h *ProductionHandler) Update(c *gin.Context) {
	var req updateProductionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, bindingError(err))
		return
	}

	rec, err := h.svc.Update(c.Request.Context(), production.UpdateInput{
		ID:      c.Query("id"),
		Morning: req.MorningQuantity,
		Evening: req.EveningQuantity,
		Calf:    req.CalfQuantity,
		Posho:   req.PoshoQuantity,
		Notes:   req.Notes,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// Delete handles DELETE /production?id=.
func (h *ProductionHandler) Delete(c *gin.Context) {
	id := c.Query("id")
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "deleted": true})
}

// Get handles GET /production: a single record with ?id=, otherwise a page.
func (h *ProductionHandler) Get(c *gin.Context) {
	if id := c.Query("id"); id != "" {
		rec, err := h.svc.Get(c.Request.Context(), id)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, rec)
		return
	}

	filter, err := h.listFilter(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	page, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *ProductionHandler) listFilter(c *gin.Context) (models.ProductionFilter, error) {
	filter := models.ProductionFilter{AnimalID: c.Query("animalId")}
	var err error
	if filter.Date, err = h.dates.ParseOptional(c.Query("date")); err != nil {
		return filter, err
	}
	if filter.From, err = h.dates.ParseOptional(c.Query("from")); err != nil {
		return filter, err
	}
	if filter.To, err = h.dates.ParseOptional(c.Query("to")); err != nil {
		return filter, err
	}
	if filter.Page, err = queryInt(c, "page"); err != nil {
		return filter, err
	}
	if filter.Limit, err = queryInt(c, "limit"); err != nil {
		return filter, err
	}
	if filter.Page < 0 || filter.Limit < 0 {
		return filter, models.Validationf("page and limit must not be negative")
	}
	return filter, nil
}

func queryInt(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, models.Validationf("%s must be an integer", key)
	}
	return v, nil
}
