package handler

import (
	"net/http"

	"github.com/blues/nftsender/internal/dispatcher"
	"github.com/blues/nftsender/internal/logger"
	"github.com/blues/nftsender/internal/logic"
	"github.com/blues/nftsender/internal/validation"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ProjectHandler struct {
	projectLogic *logic.ProjectLogic
	watcher      *validation.Watcher
	boards       *dispatcher.Boards
}

func NewProjectHandler(db *gorm.DB, watcher *validation.Watcher, boards *dispatcher.Boards) *ProjectHandler {
	return &ProjectHandler{
		projectLogic: logic.NewProjectLogic(db),
		watcher:      watcher,
		boards:       boards,
	}
}

// CreateProject 创建项目
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	project := req.ToModel()
	if err := h.projectLogic.CreateProject(c.Request.Context(), project); err != nil {
		projectError(c, err)
		return
	}

	// 配置变更后异步校验
	h.watcher.Trigger(*project)
	logger.Info("project created: %s (%s)", project.Id, project.Name)
	SuccessResponse(c, http.StatusCreated, "项目创建成功", ToProjectResponse(project))
}

// GetProjects 获取项目列表
func (h *ProjectHandler) GetProjects(c *gin.Context) {
	projects, err := h.projectLogic.GetProjects(c.Request.Context())
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "", ToProjectResponseList(projects))
}

// GetLatestProject 获取最新项目
func (h *ProjectHandler) GetLatestProject(c *gin.Context) {
	project, err := h.projectLogic.GetLatestProject(c.Request.Context())
	if err != nil {
		projectError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "", ToProjectResponse(project))
}

// GetProject 获取单个项目详情
func (h *ProjectHandler) GetProject(c *gin.Context) {
	project, err := h.projectLogic.GetProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		projectError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "", ToProjectResponse(project))
}

// UpdateProject 更新项目
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	var req ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	project, err := h.projectLogic.UpdateProject(c.Request.Context(), c.Param("id"), req.ToModel())
	if err != nil {
		projectError(c, err)
		return
	}

	h.watcher.Trigger(*project)
	SuccessResponse(c, http.StatusOK, "项目更新成功", ToProjectResponse(project))
}

// DeleteProject 删除项目，铸造记录保留
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	id := c.Param("id")
	if err := h.projectLogic.DeleteProject(c.Request.Context(), id); err != nil {
		projectError(c, err)
		return
	}

	h.watcher.Forget(id)
	h.boards.Drop(id)
	SuccessResponse(c, http.StatusOK, "项目已删除", nil)
}

// GetValidation 获取项目配置的校验状态
func (h *ProjectHandler) GetValidation(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.projectLogic.GetProject(c.Request.Context(), id); err != nil {
		projectError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "", ValidationResponse{ProjectID: id, Status: h.watcher.Get(id)})
}
