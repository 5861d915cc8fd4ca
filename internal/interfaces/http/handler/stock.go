package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	stockapp "github.com/storefront/backend/internal/application/stock"
)

// StockHandler serves the back-office inventory endpoints
type StockHandler struct {
	BaseHandler
	stockService *stockapp.StockService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(stockService *stockapp.StockService) *StockHandler {
	return &StockHandler{stockService: stockService}
}

// ListRecords returns all per-location records for a product
func (h *StockHandler) ListRecords(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	records, err := h.stockService.ListRecords(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, records)
}

// GetAvailability returns the summed sellable quantity for a product
func (h *StockHandler) GetAvailability(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	availability, err := h.stockService.GetAvailable(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, availability)
}

// ListAlerts returns records at or below their low stock threshold
func (h *StockHandler) ListAlerts(c *gin.Context) {
	filter, err := bindListFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := h.stockService.ListAlerts(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Reserve allocates stock for a product across locations
func (h *StockHandler) Reserve(c *gin.Context) {
	var req stockapp.ReserveStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.stockService.Reserve(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Release returns previously reserved stock to its locations
func (h *StockHandler) Release(c *gin.Context) {
	var req stockapp.ReleaseStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.stockService.Release(c.Request.Context(), req); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Transfer moves stock between two locations atomically
func (h *StockHandler) Transfer(c *gin.Context) {
	var req stockapp.TransferStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.stockService.Transfer(c.Request.Context(), req); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Adjust reconciles a location's balance against a physical count
func (h *StockHandler) Adjust(c *gin.Context) {
	var req stockapp.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.stockService.Adjust(c.Request.Context(), req); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// SetThresholds configures low and high stock thresholds for a location
func (h *StockHandler) SetThresholds(c *gin.Context) {
	var req stockapp.SetThresholdsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.stockService.SetThresholds(c.Request.Context(), req); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
