package main

import (
	"log"
	"time"

	"github.com/blues/nftsender/internal/config"
	"github.com/blues/nftsender/internal/database"
	"github.com/blues/nftsender/internal/dispatcher"
	"github.com/blues/nftsender/internal/edge"
	"github.com/blues/nftsender/internal/logger"
	"github.com/blues/nftsender/internal/logic"
	"github.com/blues/nftsender/internal/provider"
	"github.com/blues/nftsender/internal/router"
	"github.com/blues/nftsender/internal/task"
	"github.com/blues/nftsender/internal/validation"
	"github.com/gin-gonic/gin"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化日志
	if err := logger.Init(cfg.Log); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// 初始化数据库
	db, err := database.Init(cfg.Database, cfg.Server.Mode == "debug")
	if err != nil {
		logger.Fatal("Failed to initialize database: %v", err)
	}

	// 外部铸造服务与边缘函数
	client := provider.NewClient(cfg.Provider)
	records := logic.NewMintRecordLogic(db)
	svc := edge.NewService(client, records)
	validator := validation.NewValidator(client)

	var minter dispatcher.Minter = edge.NewLocal(svc)
	if cfg.Minting.EdgeURL != "" {
		logger.Info("minting through edge function at %s", cfg.Minting.EdgeURL)
		minter = edge.NewClient(cfg.Minting.EdgeURL, nil)
	}

	boards := dispatcher.NewBoards()
	defer boards.Close()
	watcher := validation.NewWatcher(validator, time.Duration(cfg.Validation.DebounceMs)*time.Millisecond)
	defer watcher.Stop()

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化路由
	r := router.Setup(router.Deps{
		DB:         db,
		Dispatcher: dispatcher.New(minter, records, cfg.Minting.BatchSize),
		Boards:     boards,
		Watcher:    watcher,
		Edge:       svc,
		Validator:  validator,
	})

	// 启动定时任务
	manager, err := task.NewManager(db, watcher, cfg)
	if err != nil {
		logger.Fatal("Failed to create task manager: %v", err)
	}
	manager.Start()
	defer manager.Stop()

	// 启动服务器
	logger.Info("Server starting on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}
