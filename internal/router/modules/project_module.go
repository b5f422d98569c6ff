package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/synqit/synqit-backend/internal/interface/http"
)

// ProjectModule mounts the owner's /project, the public-facing /projects
// directory and its /companies alias.
type ProjectModule struct {
	Handler *handlers.ProjectHandler
	Guard   Guard
}

func NewProjectModule(h *handlers.ProjectHandler, guard Guard) *ProjectModule {
	return &ProjectModule{Handler: h, Guard: guard}
}

func (m *ProjectModule) Register(rg *gin.RouterGroup) {
	own := m.Guard.Protected(rg, "/project")
	{
		own.GET("", m.Handler.Mine)
		own.POST("", m.Handler.Create)
		own.PUT("", m.Handler.Update)
		own.PUT("/blockchains", m.Handler.UpdateBlockchains)
		own.POST("/logo", m.Handler.UploadLogo)
	}

	projects := m.Guard.Protected(rg, "/projects")
	{
		projects.GET("", m.Handler.List)
		projects.GET("/:id", m.Handler.Get)
	}

	companies := m.Guard.Protected(rg, "/companies")
	{
		companies.GET("", m.Handler.List)
		companies.GET("/search", m.Handler.Search)
		companies.GET("/:id", m.Handler.Get)
	}
}
