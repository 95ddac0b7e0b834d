package handler

import (
	"github.com/bitfantasy/partslib/internal/parts/repository"
	"github.com/bitfantasy/partslib/internal/parts/service"
	"github.com/gin-gonic/gin"
)

// ComponentHandler 组件处理器
type ComponentHandler struct {
	svc *service.ComponentService
}

func NewComponentHandler(svc *service.ComponentService) *ComponentHandler {
	return &ComponentHandler{svc: svc}
}

// List GET /components
func (h *ComponentHandler) List(c *gin.Context) {
	filter := repository.ComponentFilter{
		ListFilter:     listFilter(c),
		SupplierID:     c.Query("supplier_id"),
		LifecycleState: c.Query("lifecycle_state"),
		MakeOrBuy:      c.Query("make_or_buy"),
	}
	items, total, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, listResponse(items, total, filter.ListFilter))
}

// Get GET /components/:id
func (h *ComponentHandler) Get(c *gin.Context) {
	comp, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, comp)
}

// Create POST /components
func (h *ComponentHandler) Create(c *gin.Context) {
	var input service.CreateComponentInput
	if !bindJSON(c, &input) {
		return
	}
	comp, err := h.svc.Create(c.Request.Context(), &input)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, comp)
}

// Update PUT /components/:id
func (h *ComponentHandler) Update(c *gin.Context) {
	var input service.UpdateComponentInput
	if !bindJSON(c, &input) {
		return
	}
	comp, err := h.svc.Update(c.Request.Context(), c.Param("id"), &input)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, comp)
}

// Archive POST /components/:id/archive
func (h *ComponentHandler) Archive(c *gin.Context) {
	if err := h.svc.Archive(c.Request.Context(), c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"archived": true})
}

// Unarchive POST /components/:id/unarchive
func (h *ComponentHandler) Unarchive(c *gin.Context) {
	if err := h.svc.Unarchive(c.Request.Context(), c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"archived": false})
}

// Delete DELETE /components/:id?confirm=true&policy=reject|detach
func (h *ComponentHandler) Delete(c *gin.Context) {
	// empty policy: configured default
	var policy service.DeletePolicy
	if p := c.Query("policy"); p != "" {
		parsed, err := service.ParseDeletePolicy(p)
		if err != nil {
			HandleError(c, err)
			return
		}
		policy = parsed
	}
	if !requireConfirm(c) {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), policy); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"deleted": true})
}

// AttachFile POST /components/:id/files/:fileId
func (h *ComponentHandler) AttachFile(c *gin.Context) {
	if err := h.svc.AttachFile(c.Request.Context(), c.Param("id"), c.Param("fileId")); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"attached": true})
}

// DetachFile DELETE /components/:id/files/:fileId
func (h *ComponentHandler) DetachFile(c *gin.Context) {
	if err := h.svc.DetachFile(c.Request.Context(), c.Param("id"), c.Param("fileId")); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"detached": true})
}

// SetCADFile PUT /components/:id/cad-file  {"file_id": "..."}；file_id 为空表示清除
func (h *ComponentHandler) SetCADFile(c *gin.Context) {
	var req struct {
		FileID *string `json:"file_id"`
	}
	if !bindJSON(c, &req) {
		return
	}
	comp, err := h.svc.SetCADFile(c.Request.Context(), c.Param("id"), req.FileID)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, comp)
}
