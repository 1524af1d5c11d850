// Package handler exposes variation types, variations, and product
// variation items over HTTP.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fekuna/omnipos-catalog-service/internal/httputil"
	"github.com/fekuna/omnipos-catalog-service/internal/logger"
	"github.com/fekuna/omnipos-catalog-service/internal/variation"
	"github.com/fekuna/omnipos-catalog-service/internal/variation/dto"
)

type VariationHandler struct {
	usecase variation.UseCase
	logger  logger.ZapLogger
}

func NewVariationHandler(usecase variation.UseCase, log logger.ZapLogger) *VariationHandler {
	return &VariationHandler{usecase: usecase, logger: log}
}

func (h *VariationHandler) CreateType(c *gin.Context) {
	var input dto.CreateTypeInput
	if !httputil.BindJSON(c, &input) {
		return
	}
	t, err := h.usecase.CreateType(c.Request.Context(), &input)
	if err != nil {
		httputil.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *VariationHandler) ListTypes(c *gin.Context) {
	types, err := h.usecase.ListTypes(c.Request.Context())
	if err != nil {
		httputil.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, types)
}

func (h *VariationHandler) UpdateType(c *gin.Context) {
	var input dto.UpdateTypeInput
	if !httputil.BindJSON(c, &input) {
		return
	}
	input.ID = c.Param("id")
	t, err := h.usecase.UpdateType(c.Request.Context(), &input)
	if err != nil {
		httputil.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *VariationHandler) DeleteType(c *gin.Context) {
	if err := h.usecase.DeleteType(c.Request.Context(), c.Param("id")); err != nil {
		httputil.RespondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *VariationHandler) CreateVariation(c *gin.Context) {
	var input dto.CreateVariationInput
	if !httputil.BindJSON(c, &input) {
		return
	}
	v, err := h.usecase.CreateVariation(c.Request.Context(), &input)
	if err != nil {
		httputil.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, v)
}

// ListVariations filters by the type_id query when given; without it
// every variation is returned.
func (h *VariationHandler) ListVariations(c *gin.Context) {
	variations, err := h.usecase.ListVariations(c.Request.Context(), c.Query("type_id"))
	if err != nil {
		httputil.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, variations)
}

func (h *VariationHandler) UpdateVariation(c *gin.Context) {
	var input dto.UpdateVariationInput
	if !httputil.BindJSON(c, &input) {
		return
	}
	input.ID = c.Param("id")
	v, err := h.usecase.UpdateVariation(c.Request.Context(), &input)
	if err != nil {
		httputil.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *VariationHandler) DeleteVariation(c *gin.Context) {
	if err := h.usecase.DeleteVariation(c.Request.Context(), c.Param("id")); err != nil {
		httputil.RespondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *VariationHandler) CreateItem(c *gin.Context) {
	var input dto.CreateItemInput
	if !httputil.BindJSON(c, &input) {
		return
	}
	input.ProductSKU = c.Param("sku")
	item, err := h.usecase.CreateItem(c.Request.Context(), &input)
	if err != nil {
		httputil.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *VariationHandler) ListItems(c *gin.Context) {
	items, err := h.usecase.ListItems(c.Request.Context(), c.Param("sku"))
	if err != nil {
		httputil.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *VariationHandler) GetItem(c *gin.Context) {
	item, err := h.usecase.GetItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputil.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *VariationHandler) UpdateItem(c *gin.Context) {
	var input dto.UpdateItemInput
	if !httputil.BindJSON(c, &input) {
		return
	}
	input.ID = c.Param("id")
	item, err := h.usecase.UpdateItem(c.Request.Context(), &input)
	if err != nil {
		httputil.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *VariationHandler) DeleteItem(c *gin.Context) {
	if err := h.usecase.DeleteItem(c.Request.Context(), c.Param("id")); err != nil {
		httputil.RespondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *VariationHandler) ReorderItems(c *gin.Context) {
	var input struct {
		OrderedIDs []string `json:"ordered_ids"`
	}
	if !httputil.BindJSON(c, &input) {
		return
	}
	if err := h.usecase.ReorderItems(c.Request.Context(), c.Param("sku"), input.OrderedIDs); err != nil {
		httputil.RespondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *VariationHandler) GenerateItems(c *gin.Context) {
	var input dto.GenerateItemsInput
	if !httputil.BindJSON(c, &input) {
		return
	}
	input.ProductSKU = c.Param("sku")
	items, err := h.usecase.GenerateItems(c.Request.Context(), &input)
	if err != nil {
		httputil.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"created": len(items), "items": items})
}
