package handler

import "github.com/gin-gonic/gin"

// RegisterRoutes 注册 /api/v1 路由
func RegisterRoutes(r gin.IRouter, h *Handlers) {
	v1 := r.Group("/api/v1")

	components := v1.Group("/components")
	{
		components.GET("", h.Component.List)
		components.POST("", h.Component.Create)
		components.GET("/:id", h.Component.Get)
		components.PUT("/:id", h.Component.Update)
		components.DELETE("/:id", h.Component.Delete)
		components.POST("/:id/archive", h.Component.Archive)
		components.POST("/:id/unarchive", h.Component.Unarchive)
		components.PUT("/:id/cad-file", h.Component.SetCADFile)
		components.POST("/:id/files/:fileId", h.Component.AttachFile)
		components.DELETE("/:id/files/:fileId", h.Component.DetachFile)

		// 层级
		components.GET("/:id/children", h.Hierarchy.Children)
		components.POST("/:id/children", h.Hierarchy.AddChild)
		components.PUT("/:id/children/:childId", h.Hierarchy.SetQuantity)
		components.DELETE("/:id/children/:childId", h.Hierarchy.RemoveChild)
		components.GET("/:id/parents", h.Hierarchy.Parents)
		components.GET("/:id/tree", h.Hierarchy.Tree)
	}

	suppliers := v1.Group("/suppliers")
	{
		suppliers.GET("", h.Supplier.List)
		suppliers.POST("", h.Supplier.Create)
		suppliers.GET("/:id", h.Supplier.Get)
		suppliers.PUT("/:id", h.Supplier.Update)
		suppliers.DELETE("/:id", h.Supplier.Delete)
		suppliers.POST("/:id/archive", h.Supplier.Archive)
		suppliers.POST("/:id/unarchive", h.Supplier.Unarchive)
	}

	files := v1.Group("/files")
	{
		files.GET("", h.File.List)
		files.POST("", h.File.Upload)
		files.POST("/register", h.File.Register)
		files.GET("/:id", h.File.Get)
		files.PUT("/:id", h.File.UpdateDescription)
		files.DELETE("/:id", h.File.Delete)
		files.GET("/:id/download", h.File.Download)
		files.POST("/:id/archive", h.File.Archive)
	}

	materials := v1.Group("/materials")
	{
		materials.GET("", h.Material.List)
		materials.POST("", h.Material.Create)
		materials.GET("/:id", h.Material.Get)
		materials.PUT("/:id", h.Material.Update)
		materials.DELETE("/:id", h.Material.Delete)
		materials.POST("/:id/archive", h.Material.Archive)
		materials.POST("/:id/unarchive", h.Material.Unarchive)
	}

	requirements := v1.Group("/requirements")
	{
		requirements.GET("", h.Requirement.List)
		requirements.POST("", h.Requirement.Create)
		requirements.GET("/:id", h.Requirement.Get)
		requirements.PUT("/:id", h.Requirement.Update)
		requirements.DELETE("/:id", h.Requirement.Delete)
		requirements.POST("/:id/archive", h.Requirement.Archive)
	}

	library := v1.Group("/library")
	{
		library.POST("/import", h.Library.Import)
		library.GET("/export", h.Library.Export)
		library.GET("/template", h.Library.Template)
		library.GET("/value", h.Library.TotalValue)
		library.GET("/summary", h.Library.Summary)
		library.POST("/clear", h.Library.Clear)
		library.POST("/seed", h.Library.Seed)
	}

	v1.GET("/events", h.SSE.Stream)
}
