package handler

import (
	"github.com/bitfantasy/partslib/internal/parts/service"
	"github.com/gin-gonic/gin"
)

// SupplierHandler 供应商处理器
type SupplierHandler struct {
	svc *service.SupplierService
}

func NewSupplierHandler(svc *service.SupplierService) *SupplierHandler {
	return &SupplierHandler{svc: svc}
}

func (h *SupplierHandler) List(c *gin.Context) {
	f := listFilter(c)
	items, total, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, listResponse(items, total, f))
}

func (h *SupplierHandler) Get(c *gin.Context) {
	sup, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, sup)
}

func (h *SupplierHandler) Create(c *gin.Context) {
	var input service.SupplierInput
	if !bindJSON(c, &input) {
		return
	}
	sup, err := h.svc.Create(c.Request.Context(), &input)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, sup)
}

func (h *SupplierHandler) Update(c *gin.Context) {
	var input service.SupplierInput
	if !bindJSON(c, &input) {
		return
	}
	sup, err := h.svc.Update(c.Request.Context(), c.Param("id"), &input)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, sup)
}

func (h *SupplierHandler) Archive(c *gin.Context) {
	if err := h.svc.SetArchived(c.Request.Context(), c.Param("id"), true); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"archived": true})
}

func (h *SupplierHandler) Unarchive(c *gin.Context) {
	if err := h.svc.SetArchived(c.Request.Context(), c.Param("id"), false); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"archived": false})
}

func (h *SupplierHandler) Delete(c *gin.Context) {
	if !requireConfirm(c) {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"deleted": true})
}
