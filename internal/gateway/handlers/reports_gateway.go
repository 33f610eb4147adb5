package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stockbook/internal/services/reports"
)

type ReportsHTTPHandler struct {
	reports *reports.Aggregator
}

func NewReportsHTTPHandler(agg *reports.Aggregator) *ReportsHTTPHandler {
	return &ReportsHTTPHandler{
		reports: agg,
	}
}

func (h *ReportsHTTPHandler) Dashboard(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	dashboard, err := h.reports.Dashboard(ctx)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Dashboard retrieved successfully", dashboard))
}

func (h *ReportsHTTPHandler) SalesReport(c *gin.Context) {
	from, to, ok := parseWindow(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	summary, err := h.reports.SalesReport(ctx, from, to)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Sales report generated successfully", summary))
}

func (h *ReportsHTTPHandler) PurchaseReport(c *gin.Context) {
	from, to, ok := parseWindow(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	summary, err := h.reports.PurchaseReport(ctx, from, to)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Purchase report generated successfully", summary))
}

func (h *ReportsHTTPHandler) InventoryReport(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	summary, err := h.reports.InventoryReport(ctx)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Inventory report generated successfully", summary))
}

func (h *ReportsHTTPHandler) SalesStats(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	stats, err := h.reports.SalesStats(ctx, time.Now().UTC())
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Sales stats retrieved successfully", stats))
}

func (h *ReportsHTTPHandler) TopProducts(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	top, err := h.reports.TopSellingProducts(ctx, parseIntQuery(c, "limit", 5))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("Top products retrieved successfully", top, listMeta{Total: len(top)}))
}

func (h *ReportsHTTPHandler) RecentTransactions(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	orders, err := h.reports.RecentTransactions(ctx, parseIntQuery(c, "limit", 10))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("Recent transactions retrieved successfully", orders, listMeta{Total: len(orders)}))
}

func (h *ReportsHTTPHandler) LowStock(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	products, err := h.reports.LowStockItems(ctx)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("Low stock items retrieved successfully", products, listMeta{Total: len(products)}))
}
