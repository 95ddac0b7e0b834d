package handler

import (
	"github.com/bitfantasy/partslib/internal/parts/service"
	"github.com/gin-gonic/gin"
)

type RequirementHandler struct {
	svc *service.RequirementService
}

func NewRequirementHandler(svc *service.RequirementService) *RequirementHandler {
	return &RequirementHandler{svc: svc}
}

func (h *RequirementHandler) List(c *gin.Context) {
	f := listFilter(c)
	items, total, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, listResponse(items, total, f))
}

func (h *RequirementHandler) Get(c *gin.Context) {
	r, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, r)
}

func (h *RequirementHandler) Create(c *gin.Context) {
	var input service.RequirementInput
	if !bindJSON(c, &input) {
		return
	}
	r, err := h.svc.Create(c.Request.Context(), &input)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, r)
}

func (h *RequirementHandler) Update(c *gin.Context) {
	var input service.RequirementInput
	if !bindJSON(c, &input) {
		return
	}
	r, err := h.svc.Update(c.Request.Context(), c.Param("id"), &input)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, r)
}

func (h *RequirementHandler) Archive(c *gin.Context) {
	if err := h.svc.SetArchived(c.Request.Context(), c.Param("id"), true); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"archived": true})
}

func (h *RequirementHandler) Delete(c *gin.Context) {
	if !requireConfirm(c) {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"deleted": true})
}
