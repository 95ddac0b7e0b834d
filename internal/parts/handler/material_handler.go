package handler

import (
	"github.com/bitfantasy/partslib/internal/parts/service"
	"github.com/gin-gonic/gin"
)

// MaterialHandler 材料处理器
type MaterialHandler struct {
	svc *service.MaterialService
}

func NewMaterialHandler(svc *service.MaterialService) *MaterialHandler {
	return &MaterialHandler{svc: svc}
}

// List GET /materials?category=metal
func (h *MaterialHandler) List(c *gin.Context) {
	f := listFilter(c)
	items, total, err := h.svc.List(c.Request.Context(), f, c.Query("category"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, listResponse(items, total, f))
}

func (h *MaterialHandler) Get(c *gin.Context) {
	m, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, m)
}

func (h *MaterialHandler) Create(c *gin.Context) {
	var input service.MaterialInput
	if !bindJSON(c, &input) {
		return
	}
	m, err := h.svc.Create(c.Request.Context(), &input)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, m)
}

func (h *MaterialHandler) Update(c *gin.Context) {
	var input service.MaterialInput
	if !bindJSON(c, &input) {
		return
	}
	m, err := h.svc.Update(c.Request.Context(), c.Param("id"), &input)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, m)
}

func (h *MaterialHandler) Archive(c *gin.Context) {
	if err := h.svc.SetArchived(c.Request.Context(), c.Param("id"), true); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"archived": true})
}

func (h *MaterialHandler) Unarchive(c *gin.Context) {
	if err := h.svc.SetArchived(c.Request.Context(), c.Param("id"), false); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"archived": false})
}

func (h *MaterialHandler) Delete(c *gin.Context) {
	if !requireConfirm(c) {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"deleted": true})
}
