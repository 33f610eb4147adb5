package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stockbook/internal/domain"
	"stockbook/internal/gateway/middleware"
	"stockbook/internal/services/pos"
)

type POSHTTPHandler struct {
	pos *pos.Service
}

func NewPOSHTTPHandler(svc *pos.Service) *POSHTTPHandler {
	return &POSHTTPHandler{
		pos: svc,
	}
}

type UpdateOrderStatusRequest struct {
	Status domain.OrderStatus `json:"status" binding:"required"`
}

type UpdateSaleStatusRequest struct {
	Status domain.SaleStatus `json:"status" binding:"required"`
}

// --- Orders ---
func (h *POSHTTPHandler) CreateOrder(c *gin.Context) {
	var req pos.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	order, err := h.pos.CreateOrder(ctx, req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse("Order created successfully", order))
}

func (h *POSHTTPHandler) ListOrders(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	orders, err := h.pos.ListOrders(ctx, pos.OrderFilter{
		Type:   domain.OrderType(c.Query("type")),
		Status: domain.OrderStatus(c.Query("status")),
		Search: c.Query("search"),
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("Orders retrieved successfully", orders, listMeta{Total: len(orders)}))
}

func (h *POSHTTPHandler) GetOrder(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	order, err := h.pos.GetOrder(ctx, c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Order retrieved successfully", order))
}

func (h *POSHTTPHandler) UpdateOrderStatus(c *gin.Context) {
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	order, err := h.pos.UpdateOrderStatus(ctx, c.Param("id"), req.Status)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Order status updated successfully", order))
}

func (h *POSHTTPHandler) DeleteOrder(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if err := h.pos.DeleteOrder(ctx, c.Param("id")); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Order deleted successfully", nil))
}

// --- Sales ---
func (h *POSHTTPHandler) CreateSale(c *gin.Context) {
	var req pos.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if req.SalesPerson == "" {
		if u := middleware.CurrentUser(c); u != nil {
			req.SalesPerson = u.Name
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	sale, err := h.pos.CreateSale(ctx, req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse("Sale "+sale.InvoiceNumber+" created successfully", sale))
}

func (h *POSHTTPHandler) ListSales(c *gin.Context) {
	from, to, ok := parseWindow(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	sales, err := h.pos.ListSales(ctx, pos.SaleFilter{
		Status: domain.SaleStatus(c.Query("status")),
		Search: c.Query("search"),
		From:   from,
		To:     to,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("Sales retrieved successfully", sales, listMeta{Total: len(sales)}))
}

func (h *POSHTTPHandler) GetSale(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	sale, err := h.pos.GetSale(ctx, c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Sale retrieved successfully", sale))
}

func (h *POSHTTPHandler) UpdateSaleStatus(c *gin.Context) {
	var req UpdateSaleStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	sale, err := h.pos.UpdateSaleStatus(ctx, c.Param("id"), req.Status)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Sale status updated successfully", sale))
}

func (h *POSHTTPHandler) RefundSale(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	sale, err := h.pos.RefundSale(ctx, c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Sale refunded successfully", sale))
}

// --- Customers ---
func (h *POSHTTPHandler) CreateCustomer(c *gin.Context) {
	var req pos.CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	customer, err := h.pos.CreateCustomer(ctx, req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse("Customer created successfully", customer))
}

func (h *POSHTTPHandler) ListCustomers(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	customers, err := h.pos.ListCustomers(ctx, c.Query("search"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("Customers retrieved successfully", customers, listMeta{Total: len(customers)}))
}

func (h *POSHTTPHandler) GetCustomer(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	customer, err := h.pos.GetCustomer(ctx, c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Customer retrieved successfully", customer))
}

func (h *POSHTTPHandler) UpdateCustomer(c *gin.Context) {
	var req pos.CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	customer, err := h.pos.UpdateCustomer(ctx, c.Param("id"), req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Customer updated successfully", customer))
}

func (h *POSHTTPHandler) DeleteCustomer(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if err := h.pos.DeleteCustomer(ctx, c.Param("id")); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Customer deleted successfully", nil))
}
