package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/synqit/synqit-backend/internal/interface/http"
)

// ProfileModule mounts /profile and the company alias of the caller's project.
type ProfileModule struct {
	Profile *handlers.ProfileHandler
	Project *handlers.ProjectHandler
	Guard   Guard
}

func NewProfileModule(profile *handlers.ProfileHandler, project *handlers.ProjectHandler, guard Guard) *ProfileModule {
	return &ProfileModule{Profile: profile, Project: project, Guard: guard}
}

func (m *ProfileModule) Register(rg *gin.RouterGroup) {
	auth := m.Guard.Protected(rg, "/profile")
	{
		auth.GET("", m.Profile.Get)
		auth.PUT("", m.Profile.Update)
		auth.DELETE("", m.Profile.Delete)
		auth.POST("/avatar", m.Profile.UploadAvatar)
		auth.GET("/company", m.Project.Mine)
		auth.PUT("/company", m.Project.Upsert)
	}
}
