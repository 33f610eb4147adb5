package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stockbook/internal/domain"
	"stockbook/internal/services/inventory"
)

type InventoryHTTPHandler struct {
	ledger *inventory.Ledger
}

func NewInventoryHTTPHandler(ledger *inventory.Ledger) *InventoryHTTPHandler {
	return &InventoryHTTPHandler{
		ledger: ledger,
	}
}

type UpdateStockRequest struct {
	Amount    *int           `json:"amount" binding:"required"`
	Op        domain.StockOp `json:"op" binding:"required"`
	Reference string         `json:"reference"`
}

type RestockRequest struct {
	Amount int `json:"amount" binding:"required"`
}

type productView struct {
	domain.Product
	StockStatus domain.StockStatus `json:"stockStatus"`
}

func viewProduct(p domain.Product) productView {
	return productView{Product: p, StockStatus: p.StockStatus()}
}

// Product endpoints
func (s *InventoryHTTPHandler) CreateProduct(c *gin.Context) {
	var req inventory.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	product, err := s.ledger.CreateProduct(ctx, req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse("Product created successfully", viewProduct(product)))
}

func (s *InventoryHTTPHandler) ListProducts(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	products, err := s.ledger.ListProducts(ctx, c.Query("category"), c.Query("search"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	status := domain.StockStatus(c.Query("stock_status"))
	views := make([]productView, 0, len(products))
	for _, p := range products {
		if status != "" && p.StockStatus() != status {
			continue
		}
		views = append(views, viewProduct(p))
	}

	c.JSON(http.StatusOK, successWithMetaResponse("Products retrieved successfully", views, listMeta{Total: len(views)}))
}

func (s *InventoryHTTPHandler) GetProduct(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	product, err := s.ledger.GetProduct(ctx, c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Product retrieved successfully", viewProduct(product)))
}

func (s *InventoryHTTPHandler) UpdateProduct(c *gin.Context) {
	var req inventory.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	product, err := s.ledger.UpdateProduct(ctx, c.Param("id"), req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Product updated successfully", viewProduct(product)))
}

func (s *InventoryHTTPHandler) DeleteProduct(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if err := s.ledger.DeleteProduct(ctx, c.Param("id")); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Product deleted successfully", nil))
}

// Stock endpoints
func (s *InventoryHTTPHandler) UpdateStock(c *gin.Context) {
	var req UpdateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	reference := req.Reference
	if reference == "" {
		reference = "manual"
	}
	product, err := s.ledger.UpdateStock(ctx, c.Param("id"), *req.Amount, req.Op, reference)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Stock updated successfully", viewProduct(product)))
}

func (s *InventoryHTTPHandler) Restock(c *gin.Context) {
	var req RestockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	product, err := s.ledger.Restock(ctx, c.Param("id"), req.Amount)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Product restocked successfully", viewProduct(product)))
}

func (s *InventoryHTTPHandler) ListMovements(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	movements, err := s.ledger.Movements(ctx, c.Query("product_id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("Stock movements retrieved successfully", movements, listMeta{Total: len(movements)}))
}
