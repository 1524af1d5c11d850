// Package handler exposes the product lifecycle over HTTP.
package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fekuna/omnipos-catalog-service/internal/httputil"
	"github.com/fekuna/omnipos-catalog-service/internal/logger"
	"github.com/fekuna/omnipos-catalog-service/internal/product"
	"github.com/fekuna/omnipos-catalog-service/internal/product/dto"
)

type ProductHandler struct {
	usecase product.UseCase
	logger  logger.ZapLogger
}

func NewProductHandler(usecase product.UseCase, log logger.ZapLogger) *ProductHandler {
	return &ProductHandler{usecase: usecase, logger: log}
}

func (h *ProductHandler) Create(c *gin.Context) {
	var input dto.CreateProductInput
	if !httputil.BindJSON(c, &input) {
		return
	}
	p, err := h.usecase.CreateProduct(c.Request.Context(), &input)
	if err != nil {
		httputil.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *ProductHandler) Get(c *gin.Context) {
	p, err := h.usecase.GetProduct(c.Request.Context(), c.Param("sku"))
	if err != nil {
		httputil.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) List(c *gin.Context) {
	filters := &dto.ProductFilters{
		SearchQuery: c.Query("q"),
		Page:        intQuery(c, "page", 1),
		PageSize:    intQuery(c, "page_size", 0),
	}
	if v, ok := boolQuery(c, "is_composite"); ok {
		filters.IsComposite = &v
	}
	if v, ok := boolQuery(c, "has_variation"); ok {
		filters.HasVariation = &v
	}

	products, total, err := h.usecase.ListProducts(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "total": total})
}

func (h *ProductHandler) Update(c *gin.Context) {
	var input dto.UpdateProductInput
	if !httputil.BindJSON(c, &input) {
		return
	}
	input.SKU = c.Param("sku")
	p, err := h.usecase.UpdateProduct(c.Request.Context(), &input)
	if err != nil {
		httputil.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) Delete(c *gin.Context) {
	cascade := c.Query("cascade") == "true"
	if err := h.usecase.DeleteProduct(c.Request.Context(), c.Param("sku"), cascade); err != nil {
		httputil.RespondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ProductHandler) FinishChecks(c *gin.Context) {
	report, err := h.usecase.FinishChecks(c.Request.Context(), c.Param("sku"))
	if err != nil {
		httputil.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func intQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func boolQuery(c *gin.Context, key string) (bool, bool) {
	raw := c.Query(key)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
