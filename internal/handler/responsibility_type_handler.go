package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/frii-edu/examiner-api/internal/service"
	appErrors "github.com/frii-edu/examiner-api/pkg/errors"
	"github.com/frii-edu/examiner-api/pkg/response"
)

// ResponsibilityTypeHandler exposes duty type catalog endpoints.
type ResponsibilityTypeHandler struct {
	types *service.ResponsibilityTypeService
}

// NewResponsibilityTypeHandler constructs ResponsibilityTypeHandler.
func NewResponsibilityTypeHandler(types *service.ResponsibilityTypeService) *ResponsibilityTypeHandler {
	return &ResponsibilityTypeHandler{types: types}
}

// List godoc
// @Summary List responsibility types
// @Tags ResponsibilityTypes
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /responsibility-types [get]
func (h *ResponsibilityTypeHandler) List(c *gin.Context) {
	types, err := h.types.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, types, nil)
}

// Get godoc
// @Summary Get responsibility type detail
// @Tags ResponsibilityTypes
// @Produce json
// @Param id path string true "Type ID"
// @Success 200 {object} response.Envelope
// @Router /responsibility-types/{id} [get]
func (h *ResponsibilityTypeHandler) Get(c *gin.Context) {
	rt, err := h.types.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rt, nil)
}

// Create godoc
// @Summary Create responsibility type
// @Tags ResponsibilityTypes
// @Accept json
// @Produce json
// @Param payload body service.CreateResponsibilityTypeRequest true "Type payload"
// @Success 201 {object} response.Envelope
// @Router /responsibility-types [post]
func (h *ResponsibilityTypeHandler) Create(c *gin.Context) {
	var req service.CreateResponsibilityTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	rt, err := h.types.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, rt)
}

// Update godoc
// @Summary Update responsibility type
// @Tags ResponsibilityTypes
// @Accept json
// @Produce json
// @Param id path string true "Type ID"
// @Param payload body service.UpdateResponsibilityTypeRequest true "Type payload"
// @Success 200 {object} response.Envelope
// @Router /responsibility-types/{id} [put]
func (h *ResponsibilityTypeHandler) Update(c *gin.Context) {
	var req service.UpdateResponsibilityTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	rt, err := h.types.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rt, nil)
}

// Delete godoc
// @Summary Delete responsibility type
// @Tags ResponsibilityTypes
// @Produce json
// @Param id path string true "Type ID"
// @Success 204
// @Router /responsibility-types/{id} [delete]
func (h *ResponsibilityTypeHandler) Delete(c *gin.Context) {
	if err := h.types.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
