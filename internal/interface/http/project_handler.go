package handlers

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/synqit/synqit-backend/internal/application"
	"github.com/synqit/synqit-backend/internal/domain/entity"
	"github.com/synqit/synqit-backend/internal/interface/middleware"
	"github.com/synqit/synqit-backend/pkg/response"
)

// ProjectAPI is the slice of *application.ProjectService used over HTTP.
type ProjectAPI interface {
	GetMyProject(ctx context.Context, ownerID string) (*entity.Project, error)
	CreateProject(ctx context.Context, ownerID string, in application.ProjectInput) (*entity.Project, error)
	UpdateProject(ctx context.Context, ownerID string, in application.ProjectInput) (*entity.Project, error)
	UpsertProject(ctx context.Context, ownerID string, in application.ProjectInput) (*entity.Project, bool, error)
	UpdateBlockchainPreferences(ctx context.Context, ownerID string, prefs []entity.BlockchainPreference) (*entity.Project, error)
	UploadLogo(ctx context.Context, ownerID, contentType string, r io.Reader) (*entity.Project, error)
	GetProject(ctx context.Context, viewerID, id string) (*entity.Project, error)
	ListProjects(ctx context.Context, f entity.ProjectFilter) ([]entity.Project, int, error)
	SearchProjects(ctx context.Context, viewerID, q string, limit int) ([]entity.Project, error)
}

type ProjectHandler struct {
	Base
	Svc            ProjectAPI
	UploadMaxBytes int64
}

func NewProjectHandler(base Base, svc ProjectAPI, uploadMaxBytes int64) *ProjectHandler {
	return &ProjectHandler{Base: base, Svc: svc, UploadMaxBytes: uploadMaxBytes}
}

type blockchainRequest struct {
	Blockchain string `json:"blockchain" binding:"required,blockchain"`
	IsPrimary  bool   `json:"isPrimary"`
}

type projectRequest struct {
	Name                 *string             `json:"name" binding:"omitempty,max=200"`
	Description          *string             `json:"description" binding:"omitempty,max=5000"`
	Website              *string             `json:"website" binding:"omitempty,max=255"`
	ProjectType          *string             `json:"projectType" binding:"omitempty,projecttype"`
	ProjectStage         *string             `json:"projectStage" binding:"omitempty,projectstage"`
	FundingStage         *string             `json:"fundingStage" binding:"omitempty,fundingstage"`
	TeamSize             *string             `json:"teamSize" binding:"omitempty,teamsize"`
	TokenAvailability    *string             `json:"tokenAvailability" binding:"omitempty,tokenavailability"`
	DevelopmentFocus     *string             `json:"developmentFocus" binding:"omitempty,max=200"`
	IsLookingForFunding  *bool               `json:"isLookingForFunding"`
	IsLookingForPartners *bool               `json:"isLookingForPartners"`
	Blockchains          []blockchainRequest `json:"blockchains" binding:"omitempty,max=20,dive"`
	Tags                 []string            `json:"tags" binding:"omitempty,max=20,dive,max=64"`
}

type blockchainsRequest struct {
	Blockchains []blockchainRequest `json:"blockchains" binding:"max=20,dive"`
}

type projectListQuery struct {
	ProjectType  string `form:"projectType" binding:"omitempty,projecttype"`
	ProjectStage string `form:"projectStage" binding:"omitempty,projectstage"`
	FundingStage string `form:"fundingStage" binding:"omitempty,fundingstage"`
	Blockchain   string `form:"blockchain" binding:"omitempty,blockchain"`
	Search       string `form:"search" binding:"max=200"`
}

func toPreferences(in []blockchainRequest) []entity.BlockchainPreference {
	if in == nil {
		return nil
	}
	out := make([]entity.BlockchainPreference, 0, len(in))
	for _, b := range in {
		out = append(out, entity.BlockchainPreference{Blockchain: entity.Blockchain(b.Blockchain), IsPrimary: b.IsPrimary})
	}
	return out
}

func enumPtr[T ~string](s *string) *T {
	if s == nil {
		return nil
	}
	v := T(*s)
	return &v
}

func (r projectRequest) input() application.ProjectInput {
	return application.ProjectInput{
		Name:                 r.Name,
		Description:          r.Description,
		Website:              r.Website,
		ProjectType:          enumPtr[entity.ProjectType](r.ProjectType),
		ProjectStage:         enumPtr[entity.ProjectStage](r.ProjectStage),
		FundingStage:         enumPtr[entity.FundingStage](r.FundingStage),
		TeamSize:             enumPtr[entity.TeamSize](r.TeamSize),
		TokenAvailability:    enumPtr[entity.TokenAvailability](r.TokenAvailability),
		DevelopmentFocus:     r.DevelopmentFocus,
		IsLookingForFunding:  r.IsLookingForFunding,
		IsLookingForPartners: r.IsLookingForPartners,
		Blockchains:          toPreferences(r.Blockchains),
		Tags:                 r.Tags,
	}
}

// Mine GET /api/project and GET /api/profile/company
func (h *ProjectHandler) Mine(c *gin.Context) {
	p, err := h.Svc.GetMyProject(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, toProject(p), "project", nil)
}

// Create POST /api/project
func (h *ProjectHandler) Create(c *gin.Context) {
	var req projectRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.Svc.CreateProject(c.Request.Context(), middleware.UserID(c), req.input())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, toProject(p), "project created", nil)
}

// Update PUT /api/project
func (h *ProjectHandler) Update(c *gin.Context) {
	var req projectRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.Svc.UpdateProject(c.Request.Context(), middleware.UserID(c), req.input())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, toProject(p), "project updated", nil)
}

// Upsert PUT /api/profile/company
func (h *ProjectHandler) Upsert(c *gin.Context) {
	var req projectRequest
	if !bindJSON(c, &req) {
		return
	}
	p, created, err := h.Svc.UpsertProject(c.Request.Context(), middleware.UserID(c), req.input())
	if err != nil {
		h.fail(c, err)
		return
	}
	if created {
		response.Success(c, http.StatusCreated, toProject(p), "company profile created", nil)
		return
	}
	response.Success(c, http.StatusOK, toProject(p), "company profile updated", nil)
}

// UpdateBlockchains PUT /api/project/blockchains
func (h *ProjectHandler) UpdateBlockchains(c *gin.Context) {
	var req blockchainsRequest
	if !bindJSON(c, &req) {
		return
	}
	prefs := toPreferences(req.Blockchains)
	if prefs == nil {
		prefs = []entity.BlockchainPreference{}
	}
	p, err := h.Svc.UpdateBlockchainPreferences(c.Request.Context(), middleware.UserID(c), prefs)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, toProject(p), "blockchain preferences updated", nil)
}

// UploadLogo POST /api/project/logo (multipart field "logo")
func (h *ProjectHandler) UploadLogo(c *gin.Context) {
	f, contentType, ok := imageUpload(c, "logo", h.UploadMaxBytes)
	if !ok {
		return
	}
	defer f.Close()

	p, err := h.Svc.UploadLogo(c.Request.Context(), middleware.UserID(c), contentType, f)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, toProject(p), "logo updated", nil)
}

// Get GET /api/projects/:id and GET /api/companies/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	p, err := h.Svc.GetProject(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, toProject(p), "project", nil)
}

// List GET /api/projects and GET /api/companies
func (h *ProjectHandler) List(c *gin.Context) {
	var q projectListQuery
	if !bindQuery(c, &q) {
		return
	}
	page, limit := pageQuery(c)
	items, total, err := h.Svc.ListProjects(c.Request.Context(), entity.ProjectFilter{
		ProjectType:          q.ProjectType,
		ProjectStage:         q.ProjectStage,
		FundingStage:         q.FundingStage,
		Blockchain:           q.Blockchain,
		Search:               q.Search,
		IsLookingForFunding:  boolQuery(c, "lookingForFunding"),
		IsLookingForPartners: boolQuery(c, "lookingForPartners"),
		Limit:                limit,
		Offset:               (page - 1) * limit,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, toProjects(items), "projects", response.NewPagination(page, limit, total))
}

// Search GET /api/companies/search?q=
func (h *ProjectHandler) Search(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	items, err := h.Svc.SearchProjects(c.Request.Context(), middleware.UserID(c), c.Query("q"), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, toProjects(items), "search results", nil)
}
