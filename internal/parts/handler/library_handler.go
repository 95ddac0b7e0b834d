package handler

import (
	"net/http"

	"github.com/bitfantasy/partslib/internal/parts/service"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// LibraryHandler 库级操作：导入导出、总值、清空
type LibraryHandler struct {
	lib            *service.Library
	importer       *service.ImportService
	exporter       *service.ExportService
	maxUploadBytes int64
}

func NewLibraryHandler(lib *service.Library, importer *service.ImportService, exporter *service.ExportService, maxUploadBytes int64) *LibraryHandler {
	return &LibraryHandler{lib: lib, importer: importer, exporter: exporter, maxUploadBytes: maxUploadBytes}
}

// Import POST /library/import (multipart: file, sheet)
func (h *LibraryHandler) Import(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		BadRequest(c, "missing upload field \"file\": "+err.Error())
		return
	}
	defer file.Close()

	summary, err := h.importer.Import(c.Request.Context(), file, c.PostForm("sheet"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, summary)
}

// Export GET /library/export
func (h *LibraryHandler) Export(c *gin.Context) {
	f, filename, err := h.exporter.Export(c.Request.Context(), queryBool(c, "include_archived"))
	if err != nil {
		HandleError(c, err)
		return
	}
	defer f.Close()

	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Header("Content-Transfer-Encoding", "binary")

	if err := f.Write(c.Writer); err != nil {
		InternalError(c, "write excel: "+err.Error())
	}
}

// Template GET /library/template
func (h *LibraryHandler) Template(c *gin.Context) {
	f, err := h.exporter.Template()
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	defer f.Close()

	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", "attachment; filename=\"components_import_template.xlsx\"")
	c.Header("Content-Transfer-Encoding", "binary")

	if err := f.Write(c.Writer); err != nil {
		InternalError(c, "write template: "+err.Error())
	}
}

// TotalValue GET /library/value
func (h *LibraryHandler) TotalValue(c *gin.Context) {
	total, err := h.lib.TotalValue(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"total_value": total.StringFixed(2)})
}

// Summary GET /library/summary
func (h *LibraryHandler) Summary(c *gin.Context) {
	s, err := h.lib.Summary(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, s)
}

// Clear POST /library/clear?confirm=true
func (h *LibraryHandler) Clear(c *gin.Context) {
	if !requireConfirm(c) {
		return
	}
	res, err := h.lib.ClearAll(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, res)
}

// Seed POST /library/seed
func (h *LibraryHandler) Seed(c *gin.Context) {
	if err := h.lib.SeedSample(c.Request.Context()); err != nil {
		HandleError(c, err)
		return
	}
	Created(c, gin.H{"seeded": true})
}
