package handler

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/bitfantasy/partslib/internal/parts/service"
	"github.com/gin-gonic/gin"
)

// FileHandler 文件处理器
type FileHandler struct {
	svc            *service.FileService
	maxUploadBytes int64
}

func NewFileHandler(svc *service.FileService, maxUploadBytes int64) *FileHandler {
	return &FileHandler{svc: svc, maxUploadBytes: maxUploadBytes}
}

// Upload POST /files (multipart: file, description)
func (h *FileHandler) Upload(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "missing upload field \"file\": "+err.Error())
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		InternalError(c, "open upload: "+err.Error())
		return
	}
	defer src.Close()

	f, err := h.svc.Upload(c.Request.Context(), src, &service.UploadInput{
		OriginalName: fileHeader.Filename,
		Description:  c.PostForm("description"),
		ContentType:  fileHeader.Header.Get("Content-Type"),
		Size:         fileHeader.Size,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, f)
}

type registerFileRequest struct {
	StoredName   string `json:"stored_name" binding:"required"`
	OriginalName string `json:"original_name"`
	Description  string `json:"description"`
}

// Register POST /files/register
func (h *FileHandler) Register(c *gin.Context) {
	var req registerFileRequest
	if !bindJSON(c, &req) {
		return
	}
	f, err := h.svc.Register(c.Request.Context(), req.StoredName, req.OriginalName, req.Description)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, f)
}

func (h *FileHandler) List(c *gin.Context) {
	filter := listFilter(c)
	items, total, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, listResponse(items, total, filter))
}

func (h *FileHandler) Get(c *gin.Context) {
	f, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, f)
}

// Download GET /files/:id/download
func (h *FileHandler) Download(c *gin.Context) {
	f, rc, err := h.svc.Open(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	defer rc.Close()

	contentType := f.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", f.OriginalName))
	if f.Size > 0 {
		c.Header("Content-Length", strconv.FormatInt(f.Size, 10))
	}
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		_ = c.Error(err)
	}
}

// UpdateDescription PUT /files/:id
func (h *FileHandler) UpdateDescription(c *gin.Context) {
	var req struct {
		Description string `json:"description"`
	}
	if !bindJSON(c, &req) {
		return
	}
	f, err := h.svc.UpdateDescription(c.Request.Context(), c.Param("id"), req.Description)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, f)
}

func (h *FileHandler) Archive(c *gin.Context) {
	if err := h.svc.SetArchived(c.Request.Context(), c.Param("id"), true); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"archived": true})
}

func (h *FileHandler) Delete(c *gin.Context) {
	if !requireConfirm(c) {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"deleted": true})
}
