package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/oneplanet-market/internal/api/middleware"
	"github.com/oneplanet-market/internal/api/service"
	"github.com/oneplanet-market/internal/domain/account"
	"github.com/oneplanet-market/internal/domain/catalog"
)

// CatalogHandler handles HTTP requests for product operations
type CatalogHandler struct {
	catalogService service.CatalogService
	logger         *slog.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(logger *slog.Logger, catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// Create adds a catalog entry. Producer-created products are owned by the
// caller; admin-created products are platform-owned.
func (h *CatalogHandler) Create(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	var producerID *uuid.UUID
	if role, ok := middleware.GetAccountRole(c); ok && role == account.RoleProducer {
		accountID, ok := middleware.GetAccountID(c)
		if !ok {
			RespondUnauthorized(c, "")
			return
		}
		producerID = &accountID
	}

	product, err := h.catalogService.AddProduct(c.Request.Context(), req.Name, req.Category, req.Description, req.Price, req.OfferPrice, producerID, req.ImageURLs)
	if err != nil {
		if errors.Is(err, catalog.ErrEmptyProductName) || errors.Is(err, catalog.ErrInvalidPrice) {
			RespondBadRequest(c, err.Error())
			return
		}
		h.logger.Error("Failed to create product", "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, mapProductToResponse(product))
}

// GetByID retrieves a product by its ID, returning 404 if not found
func (h *CatalogHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid product ID")
		return
	}

	product, err := h.catalogService.GetProduct(c.Request.Context(), id)
	if err != nil {
		var notFound catalog.ErrProductNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Product not found")
			return
		}
		h.logger.Error("Failed to get product", "product_id", id.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapProductToResponse(product))
}

// List returns the storefront catalog
func (h *CatalogHandler) List(c *gin.Context) {
	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	products, err := h.catalogService.ListProducts(c.Request.Context(), pagination.Page, pagination.PerPage)
	if err != nil {
		h.logger.Error("Failed to list products", "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		responses = append(responses, mapProductToResponse(p))
	}
	RespondOK(c, responses)
}

// ListMine returns the authenticated producer's products
func (h *CatalogHandler) ListMine(c *gin.Context) {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	products, err := h.catalogService.ListByProducer(c.Request.Context(), accountID)
	if err != nil {
		h.logger.Error("Failed to list producer products", "producer_id", accountID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		responses = append(responses, mapProductToResponse(p))
	}
	RespondOK(c, responses)
}

// SetStock toggles a product's availability
func (h *CatalogHandler) SetStock(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid product ID")
		return
	}

	var req SetStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if err := h.catalogService.SetStock(c.Request.Context(), id, *req.InStock); err != nil {
		var notFound catalog.ErrProductNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Product not found")
			return
		}
		h.logger.Error("Failed to update product stock", "product_id", id.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondNoContent(c)
}
