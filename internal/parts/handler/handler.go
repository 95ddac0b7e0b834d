package handler

import (
	"errors"
	"strconv"

	"github.com/bitfantasy/partslib/internal/parts/events"
	"github.com/bitfantasy/partslib/internal/parts/repository"
	"github.com/bitfantasy/partslib/internal/parts/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers 处理器集合
type Handlers struct {
	Component   *ComponentHandler
	Hierarchy   *HierarchyHandler
	Supplier    *SupplierHandler
	File        *FileHandler
	Material    *MaterialHandler
	Requirement *RequirementHandler
	Library     *LibraryHandler
	SSE         *SSEHandler
}

// NewHandlers 创建处理器集合
func NewHandlers(svc *service.Services, hub *events.Hub, logger *zap.Logger, maxUploadBytes int64) *Handlers {
	return &Handlers{
		Component:   NewComponentHandler(svc.Component),
		Hierarchy:   NewHierarchyHandler(svc.Hierarchy),
		Supplier:    NewSupplierHandler(svc.Supplier),
		File:        NewFileHandler(svc.File, maxUploadBytes),
		Material:    NewMaterialHandler(svc.Material),
		Requirement: NewRequirementHandler(svc.Requirement),
		Library:     NewLibraryHandler(svc.Library, svc.Import, svc.Export, maxUploadBytes),
		SSE:         NewSSEHandler(hub, logger),
	}
}

// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ListResponse 列表响应结构
type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

// Pagination 分页信息
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// 错误码：HTTP 状态码 × 100 + 序号
const (
	CodeBadRequest           = 40000
	CodeValidation           = 40001
	CodeConfirmationRequired = 40002
	CodeNotFound             = 40400
	CodeEdgeNotFound         = 40401
	CodeDuplicateKey         = 40900
	CodeDuplicateEdge        = 40901
	CodeCycle                = 40902
	CodeHasRelations         = 40903
	CodeInternal             = 50000
	CodeStorageIO            = 50001
)

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created 创建成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, code int, message string) {
	ErrorWithData(c, code, message, nil)
}

// ErrorWithData 带附加数据的错误响应（如字段校验错误）
func ErrorWithData(c *gin.Context, code int, message string, data interface{}) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// BadRequest 参数错误响应
func BadRequest(c *gin.Context, message string) {
	Error(c, CodeBadRequest, message)
}

// NotFound 资源不存在响应
func NotFound(c *gin.Context, message string) {
	Error(c, CodeNotFound, message)
}

// InternalError 服务器错误响应
func InternalError(c *gin.Context, message string) {
	Error(c, CodeInternal, message)
}

// HandleError 将服务层错误映射为响应
func HandleError(c *gin.Context, err error) {
	_ = c.Error(err)

	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		ErrorWithData(c, CodeValidation, err.Error(), verr.Fields)
	case errors.Is(err, service.ErrValidation):
		Error(c, CodeValidation, err.Error())
	case errors.Is(err, service.ErrConfirmationRequired):
		Error(c, CodeConfirmationRequired, err.Error())
	case errors.Is(err, service.ErrEdgeNotFound):
		Error(c, CodeEdgeNotFound, err.Error())
	case errors.Is(err, service.ErrNotFound):
		Error(c, CodeNotFound, err.Error())
	case errors.Is(err, service.ErrDuplicateEdge):
		Error(c, CodeDuplicateEdge, err.Error())
	case errors.Is(err, service.ErrCycle):
		Error(c, CodeCycle, err.Error())
	case errors.Is(err, service.ErrHasRelations):
		Error(c, CodeHasRelations, err.Error())
	case errors.Is(err, service.ErrDuplicateKey):
		Error(c, CodeDuplicateKey, err.Error())
	case errors.Is(err, service.ErrStorageIO):
		Error(c, CodeStorageIO, err.Error())
	default:
		InternalError(c, err.Error())
	}
}

// GetPagination 从请求获取分页参数
func GetPagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}

	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 500 {
			pageSize = v
		}
	}

	return page, pageSize
}

func listFilter(c *gin.Context) repository.ListFilter {
	page, pageSize := GetPagination(c)
	return repository.ListFilter{
		Search:          c.Query("search"),
		IncludeArchived: queryBool(c, "include_archived"),
		Page:            page,
		PageSize:        pageSize,
	}
}

func listResponse(items interface{}, total int64, f repository.ListFilter) ListResponse {
	totalPages := 0
	if f.PageSize > 0 {
		totalPages = int((total + int64(f.PageSize) - 1) / int64(f.PageSize))
	}
	return ListResponse{
		Items: items,
		Pagination: &Pagination{
			Page:       f.Page,
			PageSize:   f.PageSize,
			Total:      int(total),
			TotalPages: totalPages,
		},
	}
}

func queryBool(c *gin.Context, key string) bool {
	v, err := strconv.ParseBool(c.Query(key))
	return err == nil && v
}

// requireConfirm guards irreversible operations: the caller must pass confirm=true.
func requireConfirm(c *gin.Context) bool {
	if queryBool(c, "confirm") {
		return true
	}
	HandleError(c, service.ErrConfirmationRequired)
	return false
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return false
	}
	return true
}
