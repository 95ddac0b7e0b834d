package handler

import (
	"github.com/bitfantasy/partslib/internal/parts/service"
	"github.com/gin-gonic/gin"
)

// HierarchyHandler 组件层级处理器
type HierarchyHandler struct {
	svc *service.HierarchyService
}

func NewHierarchyHandler(svc *service.HierarchyService) *HierarchyHandler {
	return &HierarchyHandler{svc: svc}
}

// Children GET /components/:id/children?include_archived=true
func (h *HierarchyHandler) Children(c *gin.Context) {
	edges, err := h.svc.Children(c.Request.Context(), c.Param("id"), queryBool(c, "include_archived"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"items": edges})
}

// Parents GET /components/:id/parents?include_archived=true
func (h *HierarchyHandler) Parents(c *gin.Context) {
	edges, err := h.svc.Parents(c.Request.Context(), c.Param("id"), queryBool(c, "include_archived"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"items": edges})
}

// Tree GET /components/:id/tree
func (h *HierarchyHandler) Tree(c *gin.Context) {
	tree, err := h.svc.Tree(c.Request.Context(), c.Param("id"), queryBool(c, "include_archived"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, tree)
}

type addChildRequest struct {
	ChildID  string `json:"child_id" binding:"required"`
	Quantity int    `json:"quantity"`
}

// AddChild POST /components/:id/children
func (h *HierarchyHandler) AddChild(c *gin.Context) {
	var req addChildRequest
	if !bindJSON(c, &req) {
		return
	}
	edge, err := h.svc.AddChild(c.Request.Context(), c.Param("id"), req.ChildID, req.Quantity)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, edge)
}

// SetQuantity PUT /components/:id/children/:childId
func (h *HierarchyHandler) SetQuantity(c *gin.Context) {
	var req struct {
		Quantity int `json:"quantity" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if err := h.svc.SetQuantity(c.Request.Context(), c.Param("id"), c.Param("childId"), req.Quantity); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"quantity": req.Quantity})
}

// RemoveChild DELETE /components/:id/children/:childId
func (h *HierarchyHandler) RemoveChild(c *gin.Context) {
	if err := h.svc.RemoveChild(c.Request.Context(), c.Param("id"), c.Param("childId")); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"removed": true})
}
