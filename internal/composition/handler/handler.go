// Package handler exposes composition editing and the derived views
// (weight, tree, complexity) over HTTP.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fekuna/omnipos-catalog-service/internal/composition"
	"github.com/fekuna/omnipos-catalog-service/internal/composition/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/httputil"
	"github.com/fekuna/omnipos-catalog-service/internal/logger"
)

type CompositionHandler struct {
	usecase composition.UseCase
	logger  logger.ZapLogger
}

func NewCompositionHandler(usecase composition.UseCase, log logger.ZapLogger) *CompositionHandler {
	return &CompositionHandler{usecase: usecase, logger: log}
}

func (h *CompositionHandler) CreateItem(c *gin.Context) {
	var input dto.CreateItemInput
	if !httputil.BindJSON(c, &input) {
		return
	}
	input.ParentSKU = c.Param("sku")
	item, err := h.usecase.CreateItem(c.Request.Context(), &input)
	if err != nil {
		httputil.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *CompositionHandler) ListItems(c *gin.Context) {
	items, err := h.usecase.ListItems(c.Request.Context(), c.Param("sku"))
	if err != nil {
		httputil.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *CompositionHandler) UpdateItem(c *gin.Context) {
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

func (h *CompositionHandler) DeleteItem(c *gin.Context) {
	if err := h.usecase.DeleteItem(c.Request.Context(), c.Param("id")); err != nil {
		httputil.RespondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CompositionHandler) CalculateWeight(c *gin.Context) {
	weight, err := h.usecase.CalculateWeight(c.Request.Context(), c.Param("sku"))
	if err != nil {
		httputil.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sku": c.Param("sku"), "weight": weight})
}

func (h *CompositionHandler) Tree(c *gin.Context) {
	tree, err := h.usecase.BuildTree(c.Request.Context(), c.Param("sku"), 0)
	if err != nil {
		httputil.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, tree)
}

func (h *CompositionHandler) Complexity(c *gin.Context) {
	report, err := h.usecase.ValidateComplexity(c.Request.Context(), c.Param("sku"))
	if err != nil {
		httputil.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
