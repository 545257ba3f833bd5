package edge

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/blues/nftsender/internal/logger"
	"github.com/blues/nftsender/internal/model"
	"github.com/blues/nftsender/internal/provider"
	"github.com/blues/nftsender/internal/recipient"
)

// NFTMinter 外部服务的铸造接口
type NFTMinter interface {
	MintNFT(ctx context.Context, apiKey, collectionID string, req provider.MintRequest) (*provider.Response, error)
}

// Reconciler 按记录ID回写铸造结果
type Reconciler interface {
	UpdateStatus(ctx context.Context, id string, status model.MintStatus, errorMessage string) error
}

// ErrorBody 失败响应中的 error 字段
type ErrorBody struct {
	Message string          `json:"message"`
	Details json.RawMessage `json:"details,omitempty"`
}

// MintingDetails 实际发给外部服务的参数
type MintingDetails struct {
	RecordId          string           `json:"recordId,omitempty"`
	Recipient         string           `json:"recipient"`
	OriginalRecipient string           `json:"originalRecipient"`
	CollectionId      string           `json:"collectionId"`
	TemplateId        string           `json:"templateId,omitempty"`
	Blockchain        model.Blockchain `json:"blockchain"`
}

// Response 边缘函数的响应体
type Response struct {
	Success        bool            `json:"success"`
	Data           json.RawMessage `json:"data,omitempty"`
	MintingDetails *MintingDetails `json:"mintingDetails,omitempty"`
	Error          *ErrorBody      `json:"error,omitempty"`
}

// Service 处理单次铸造：校验参数、格式化接收者、调用外部服务、回写记录
type Service struct {
	minter NFTMinter
	store  Reconciler
}

// NewService 创建；store 可以为 nil
func NewService(minter NFTMinter, store Reconciler) *Service {
	return &Service{minter: minter, store: store}
}

// Handle 返回 HTTP 状态码和响应体
func (s *Service) Handle(ctx context.Context, req Request) (int, Response) {
	req.Normalize()
	logger.Info("[edge] request received: record=%s recipient=%s template=%s collection=%s apiKeyProvided=%t",
		req.RecordId, req.Recipient, req.TemplateId, req.CollectionId, req.ApiKey != "")

	if missing := req.Validate(); len(missing) > 0 {
		logger.Warn("[edge] missing required parameters: %v", missing)
		details, _ := json.Marshal(map[string][]string{"missing": missing})
		return http.StatusBadRequest, Response{Error: &ErrorBody{Message: ErrMissingParameters.Error(), Details: details}}
	}

	details := &MintingDetails{
		RecordId:          req.RecordId,
		Recipient:         recipient.FormatForProvider(req.Recipient, req.Blockchain),
		OriginalRecipient: req.Recipient,
		CollectionId:      req.EffectiveCollectionID(),
		TemplateId:        req.ProviderTemplateID(),
		Blockchain:        req.Blockchain,
	}
	logger.Debug("[edge] formatted recipient %s -> %s", req.Recipient, details.Recipient)

	resp, err := s.minter.MintNFT(ctx, req.ApiKey, details.CollectionId, provider.MintRequest{
		Recipient:  details.Recipient,
		TemplateId: details.TemplateId,
	})
	if err != nil {
		logger.Error("[edge] provider call failed: %v", err)
		result := provider.NetworkFailure(err)
		s.reconcile(ctx, req.RecordId, result)
		return http.StatusInternalServerError, Response{
			Error:          &ErrorBody{Message: result.Error.Message, Details: result.Error.Details},
			MintingDetails: details,
		}
	}

	result := provider.FromHTTP(resp.Status, resp.Body)
	s.reconcile(ctx, req.RecordId, result)

	if result.OK {
		logger.Info("[edge] minted for %s (%d)", details.Recipient, resp.Status)
		return http.StatusOK, Response{Success: true, Data: result.Data, MintingDetails: details}
	}

	logger.Error("[edge] provider rejected mint for %s (%d): %s", details.Recipient, resp.Status, result.Error.Message)
	return resp.Status, Response{
		Error:          &ErrorBody{Message: result.Error.Message, Details: result.Error.Details},
		MintingDetails: details,
	}
}

// reconcile 尽力回写记录，只按记录ID匹配；临时或缺失的ID不写
func (s *Service) reconcile(ctx context.Context, recordID string, result provider.Result) {
	if s.store == nil || model.IsTempID(recordID) {
		return
	}
	status := model.MintStatusMinted
	if !result.OK {
		status = model.MintStatusFailed
	}
	if err := s.store.UpdateStatus(ctx, recordID, status, result.ErrorMessage()); err != nil {
		logger.Error("[edge] failed to reconcile record %s: %v", recordID, err)
		return
	}
	logger.Debug("[edge] record %s reconciled as %s", recordID, status)
}

// Local 进程内调用 Service 的 Minter
type Local struct {
	svc *Service
}

// NewLocal 创建
func NewLocal(svc *Service) *Local {
	return &Local{svc: svc}
}

// Mint 直接调用，结果转成统一结构
func (l *Local) Mint(ctx context.Context, req Request) provider.Result {
	status, resp := l.svc.Handle(ctx, req)
	if resp.Success {
		return provider.Success(status, resp.Data)
	}
	if resp.Error == nil {
		return provider.Failure(status, "Unknown error", nil)
	}
	return provider.Failure(status, resp.Error.Message, resp.Error.Details)
}
