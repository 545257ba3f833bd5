package router

import (
	"strings"

	"github.com/blues/nftsender/internal/dispatcher"
	"github.com/blues/nftsender/internal/edge"
	"github.com/blues/nftsender/internal/handler"
	"github.com/blues/nftsender/internal/validation"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// edgePrefix 铸造处理器路由前缀，使用自己的 CORS 规则
const edgePrefix = "/functions"

// Deps 路由依赖
type Deps struct {
	DB         *gorm.DB
	Dispatcher *dispatcher.Dispatcher
	Boards     *dispatcher.Boards
	Watcher    *validation.Watcher
	Edge       *edge.Service
	Validator  *validation.Validator
}

func Setup(deps Deps) *gin.Engine {
	r := gin.New()

	// 中间件
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "nftsender",
		})
	})

	// API版本组
	v1 := r.Group("/api/v1")
	{
		projectHandler := handler.NewProjectHandler(deps.DB, deps.Watcher, deps.Boards)
		mintHandler := handler.NewMintHandler(deps.DB, deps.Dispatcher, deps.Boards)

		projects := v1.Group("/projects")
		{
			projects.POST("", projectHandler.CreateProject)
			projects.GET("", projectHandler.GetProjects)
			projects.GET("/latest", projectHandler.GetLatestProject)
			projects.GET("/:id", projectHandler.GetProject)
			projects.PUT("/:id", projectHandler.UpdateProject)
			projects.DELETE("/:id", projectHandler.DeleteProject)
			projects.GET("/:id/validation", projectHandler.GetValidation)

			// 接收者与铸造记录
			projects.POST("/:id/recipients", mintHandler.AddRecipients)
			projects.POST("/:id/recipients/upload", mintHandler.UploadRecipients)
			projects.GET("/:id/records", mintHandler.GetRecords)
			projects.GET("/:id/stats", mintHandler.GetStats)
			projects.POST("/:id/mint", mintHandler.Mint)
			projects.POST("/:id/retry-failed", mintHandler.RetryFailed)
			projects.POST("/:id/records/:recordId/retry", mintHandler.RetryRecord)
			projects.DELETE("/:id/records/:recordId", mintHandler.DeleteRecord)
			projects.DELETE("/:id/records", mintHandler.DeleteRecords)
		}
	}

	edge.NewHandler(deps.Edge, deps.Validator).Register(r.Group(edgePrefix))

	return r
}

// CORS中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, edgePrefix+"/") {
			c.Next()
			return
		}

		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
