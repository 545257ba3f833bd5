package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/blues/nftsender/internal/dispatcher"
	"github.com/blues/nftsender/internal/logger"
	"github.com/blues/nftsender/internal/logic"
	"github.com/blues/nftsender/internal/model"
	"github.com/blues/nftsender/internal/recipient"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var ErrNoSelection = errors.New("请至少选择一条记录")

type MintHandler struct {
	projectLogic *logic.ProjectLogic
	recordLogic  *logic.MintRecordLogic
	dispatcher   *dispatcher.Dispatcher
	boards       *dispatcher.Boards
}

func NewMintHandler(db *gorm.DB, d *dispatcher.Dispatcher, boards *dispatcher.Boards) *MintHandler {
	return &MintHandler{
		projectLogic: logic.NewProjectLogic(db),
		recordLogic:  logic.NewMintRecordLogic(db),
		dispatcher:   d,
		boards:       boards,
	}
}

// project 读取路径中的项目，失败时已写响应
func (h *MintHandler) project(c *gin.Context) (*model.ProjectModel, bool) {
	project, err := h.projectLogic.GetProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		projectError(c, err)
		return nil, false
	}
	return project, true
}

// board 返回已加载的 Board
func (h *MintHandler) board(ctx context.Context, projectID string, reload bool) *dispatcher.Board {
	b := h.boards.Get(projectID)
	if reload || !b.Loaded() {
		b.Load(h.dispatcher.LoadMintingRecordsForProject(ctx, projectID))
	}
	return b
}

// AddRecipients 解析粘贴的文本并创建 pending 记录
func (h *MintHandler) AddRecipients(c *gin.Context) {
	project, ok := h.project(c)
	if !ok {
		return
	}
	var req RecipientsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	parsed, err := recipient.Parse(req.Text)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	h.saveRecipients(c, project, parsed)
}

// UploadRecipients 解析上传的 xlsx/csv 文件
func (h *MintHandler) UploadRecipients(c *gin.Context) {
	project, ok := h.project(c)
	if !ok {
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "缺少上传文件")
		return
	}
	f, err := header.Open()
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	defer f.Close()

	parsed, err := recipient.ParseSheet(header.Filename, f)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	h.saveRecipients(c, project, parsed)
}

func (h *MintHandler) saveRecipients(c *gin.Context, project *model.ProjectModel, parsed recipient.Result) {
	records, unsaved := h.recordLogic.CreatePending(c.Request.Context(), project, parsed.Recipients)
	h.board(c.Request.Context(), project.Id, false).Add(records...)

	logger.Info("project %s: %d recipients loaded, %d unsaved", project.Id, parsed.Count, unsaved)
	SuccessResponse(c, http.StatusCreated, "接收者已加载", RecipientsResponse{
		Count:   parsed.Count,
		Unsaved: unsaved,
		Records: ToMintRecordResponseList(records),
	})
}

// GetRecords 获取项目的记录；reload=true 时重新从数据库加载
func (h *MintHandler) GetRecords(c *gin.Context) {
	project, ok := h.project(c)
	if !ok {
		return
	}
	b := h.board(c.Request.Context(), project.Id, c.Query("reload") == "true")
	SuccessResponse(c, http.StatusOK, "", ToMintRecordResponseList(b.Snapshot()))
}

// GetStats 获取项目的状态统计
func (h *MintHandler) GetStats(c *gin.Context) {
	project, ok := h.project(c)
	if !ok {
		return
	}
	SuccessResponse(c, http.StatusOK, "", h.board(c.Request.Context(), project.Id, false).Stats())
}

// Mint 对选中的 pending 记录发起批量铸造
func (h *MintHandler) Mint(c *gin.Context) {
	project, ok := h.project(c)
	if !ok {
		return
	}
	var req RecordIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.RecordIds) == 0 {
		ErrorResponse(c, http.StatusBadRequest, ErrNoSelection.Error())
		return
	}

	b := h.board(c.Request.Context(), project.Id, false)
	selected := b.Select(req.RecordIds)
	pending := pendingIDs(selected)
	if len(pending) == 0 {
		ErrorResponse(c, http.StatusBadRequest, dispatcher.ErrNoPendingRecords.Error())
		return
	}

	dispatch := b.Begin(pending...)
	h.run(c, len(pending), dispatch, func(ctx context.Context) (dispatcher.Summary, error) {
		return h.dispatcher.ProcessMultipleMints(ctx, selected, *project, dispatch)
	})
}

// RetryFailed 重试项目内所有失败的记录
func (h *MintHandler) RetryFailed(c *gin.Context) {
	project, ok := h.project(c)
	if !ok {
		return
	}
	b := h.board(c.Request.Context(), project.Id, false)
	var failed []model.MintRecordModel
	var ids []string
	for _, r := range b.Snapshot() {
		if r.Status == model.MintStatusFailed {
			failed = append(failed, r)
			ids = append(ids, r.Id)
		}
	}
	if len(failed) == 0 {
		ErrorResponse(c, http.StatusBadRequest, "没有失败的记录")
		return
	}

	dispatch := b.Begin(ids...)
	h.run(c, len(failed), dispatch, func(ctx context.Context) (dispatcher.Summary, error) {
		return h.dispatcher.RetryFailed(ctx, failed, *project, dispatch)
	})
}

// RetryRecord 重试单条失败记录
func (h *MintHandler) RetryRecord(c *gin.Context) {
	project, ok := h.project(c)
	if !ok {
		return
	}
	b := h.board(c.Request.Context(), project.Id, false)
	record, found := b.Get(c.Param("recordId"))
	if !found {
		ErrorResponse(c, http.StatusNotFound, model.ErrRecordNotFound.Error())
		return
	}
	// 先检查状态，避免认领正在铸造的记录
	if record.Status != model.MintStatusFailed {
		ErrorResponse(c, http.StatusConflict, "只有失败的记录可以重试")
		return
	}

	ctx := context.WithoutCancel(c.Request.Context())
	result, _ := h.dispatcher.RetryMint(ctx, record, *project, b.Begin(record.Id))
	SuccessResponse(c, http.StatusOK, "", result)
}

// DeleteRecord 删除单条记录
func (h *MintHandler) DeleteRecord(c *gin.Context) {
	project, ok := h.project(c)
	if !ok {
		return
	}
	b := h.board(c.Request.Context(), project.Id, false)
	id := c.Param("recordId")
	record, found := b.Get(id)
	if !found {
		record = model.MintRecordModel{Id: id}
	}

	if !h.dispatcher.DeleteRecord(c.Request.Context(), record) {
		ErrorResponse(c, http.StatusInternalServerError, "删除记录失败")
		return
	}
	b.Remove(id)
	SuccessResponse(c, http.StatusOK, "记录已删除", nil)
}

// DeleteRecords 批量删除记录
func (h *MintHandler) DeleteRecords(c *gin.Context) {
	project, ok := h.project(c)
	if !ok {
		return
	}
	var req RecordIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.RecordIds) == 0 {
		ErrorResponse(c, http.StatusBadRequest, ErrNoSelection.Error())
		return
	}

	if !h.dispatcher.DeleteMultipleRecords(c.Request.Context(), req.RecordIds) {
		ErrorResponse(c, http.StatusInternalServerError, "删除记录失败")
		return
	}
	h.board(c.Request.Context(), project.Id, false).Remove(req.RecordIds...)
	SuccessResponse(c, http.StatusOK, "记录已删除", gin.H{"deleted": len(req.RecordIds)})
}

// run 调度与请求上下文分离；wait=true 时等待完成并返回汇总
func (h *MintHandler) run(c *gin.Context, count int, dispatch *dispatcher.Dispatch, fn func(ctx context.Context) (dispatcher.Summary, error)) {
	ctx := context.WithoutCancel(c.Request.Context())
	resp := DispatchResponse{Dispatched: count, Generation: dispatch.Generation()}

	if c.Query("wait") != "true" {
		go func() {
			if _, err := fn(ctx); err != nil {
				logger.Error("dispatch %d failed: %v", dispatch.Generation(), err)
			}
		}()
		SuccessResponse(c, http.StatusAccepted, "铸造已开始", resp)
		return
	}

	summary, err := fn(ctx)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	resp.Summary = &summary
	SuccessResponse(c, http.StatusOK, "铸造完成", resp)
}

func pendingIDs(records []model.MintRecordModel) []string {
	ids := make([]string, 0, len(records))
	for _, r := range records {
		if r.Status == model.MintStatusPending {
			ids = append(ids, r.Id)
		}
	}
	return ids
}
