package main

import (
	"log"

	"github.com/architect/internal/config"
	"github.com/architect/internal/db"
	"github.com/architect/internal/router"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// 可选的种子账号，便于首次部署后直接登录
	if err := db.EnsureUser(cfg.SeedEmail, cfg.SeedPassword); err != nil {
		log.Fatalf("failed to ensure seed user: %v", err)
	}

	// 设置并运行 Gin 服务器
	r := router.SetupRouter(cfg.SessionSecret)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}
