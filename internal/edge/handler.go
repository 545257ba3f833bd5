package edge

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/blues/nftsender/internal/logger"
	"github.com/blues/nftsender/internal/provider"
	"github.com/blues/nftsender/internal/validation"
	"github.com/gin-gonic/gin"
)

const (
	corsAllowHeaders = "authorization, x-client-info, apikey, content-type, x-api-key, accept"
	corsAllowMethods = "GET, POST, OPTIONS"
)

// CORS 边缘函数的跨域头，OPTIONS 预检直接返回 204
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", corsAllowHeaders)
		c.Header("Access-Control-Allow-Methods", corsAllowMethods)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// Handler 边缘函数的 HTTP 入口
type Handler struct {
	svc       *Service
	validator *validation.Validator
}

// NewHandler 创建
func NewHandler(svc *Service, validator *validation.Validator) *Handler {
	return &Handler{svc: svc, validator: validator}
}

// Register 注册 /crossmint-nft 与 /validate-template
func (h *Handler) Register(g *gin.RouterGroup) {
	g.Use(CORS())
	g.POST("/crossmint-nft", h.Mint)
	g.OPTIONS("/crossmint-nft", preflight)
	g.GET("/validate-template", h.ValidateTemplate)
	g.OPTIONS("/validate-template", preflight)
}

func preflight(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Mint POST /crossmint-nft
func (h *Handler) Mint(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("[edge] invalid request body: %v", err)
		details, _ := json.Marshal(map[string]string{"text": err.Error()})
		c.JSON(http.StatusBadRequest, Response{Error: &ErrorBody{Message: "Invalid request body", Details: details}})
		return
	}

	status, resp := h.svc.Handle(c.Request.Context(), req)
	c.JSON(status, resp)
}

// templateResponse GET /validate-template 的响应
type templateResponse struct {
	ID                string                       `json:"id"`
	CollectionID      string                       `json:"collectionId"`
	Name              string                       `json:"name"`
	Description       string                       `json:"description"`
	Metadata          templateMetadata             `json:"metadata"`
	Chain             string                       `json:"chain"`
	StandardizedChain string                       `json:"standardizedChain"`
	ReadableChain     string                       `json:"readableChain"`
	CompatibleWallets validation.CompatibleWallets `json:"compatibleWallets"`
}

type templateMetadata struct {
	Image string `json:"image"`
}

// ValidateTemplate GET /validate-template?templateId=&collectionId=&apiKey=
func (h *Handler) ValidateTemplate(c *gin.Context) {
	tpl, err := h.validator.Validate(c.Request.Context(), c.Query("templateId"), c.Query("collectionId"), c.Query("apiKey"))
	if err != nil {
		status := http.StatusInternalServerError
		var apiErr *provider.APIError
		switch {
		case errors.Is(err, validation.ErrMissingParams):
			status = http.StatusBadRequest
		case errors.Is(err, validation.ErrTemplateNotFound):
			status = http.StatusNotFound
		case errors.As(err, &apiErr):
			status = apiErr.Status
		}
		logger.Warn("[validate-template] %v", err)
		c.JSON(status, gin.H{"error": true, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, templateResponse{
		ID:                tpl.ID,
		CollectionID:      tpl.CollectionID,
		Name:              tpl.Name,
		Description:       tpl.Description,
		Metadata:          templateMetadata{Image: tpl.Image},
		Chain:             string(tpl.Chain),
		StandardizedChain: string(tpl.Chain),
		ReadableChain:     tpl.ReadableChain,
		CompatibleWallets: tpl.CompatibleWallets,
	})
}
