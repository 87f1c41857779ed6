package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/fluttertask/butterfly-todo-backend/api"
	"github.com/fluttertask/butterfly-todo-backend/internal/platform/config"
	"github.com/fluttertask/butterfly-todo-backend/internal/platform/database"
	"github.com/fluttertask/butterfly-todo-backend/internal/platform/health"
	"github.com/fluttertask/butterfly-todo-backend/internal/platform/shutdown"
	"github.com/fluttertask/butterfly-todo-backend/internal/platform/startup"
	"github.com/fluttertask/butterfly-todo-backend/internal/reminder"
	"github.com/fluttertask/butterfly-todo-backend/pkg/lifecycle"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// --- 配置加载 ---
	if err := godotenv.Load(); err != nil {
		fmt.Println("提示: 未找到 .env 文件，将依赖环境变量和配置文件。")
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("加载配置失败: %v", err))
	}

	// --- 基础设施初始化 ---
	if err := database.InitDB(cfg.Database); err != nil {
		panic(fmt.Sprintf("初始化数据库失败: %v", err))
	}
	redisEnabled := database.InitRedis(cfg.Database.Redis)
	if redisEnabled {
		health.InitializeRunID()
	} else {
		fmt.Println("未配置Redis地址，排行榜将直接查询SQL。")
	}

	// --- 应用初始化 ---
	if err := startup.InitializeApplication(); err != nil {
		panic(fmt.Sprintf("应用初始化失败，无法启动: %v", err))
	}

	// --- 生命周期管理与后台服务 ---
	serviceManager := lifecycle.NewManager()

	if redisEnabled {
		// 启动后先阻塞执行一次健康检查，保证缓存与SQL一致
		fmt.Println("正在执行启动后健康检查...")
		health.PerformCheck()

		healthHandle, err := serviceManager.NewServiceHandle("redis-health-checker")
		if err != nil {
			panic(fmt.Sprintf("注册健康检查器失败: %v", err))
		}
		go health.StartRedisHealthCheck(healthHandle)
	}

	scannerHandle, err := serviceManager.NewServiceHandle("reminder-scanner")
	if err != nil {
		panic(fmt.Sprintf("注册提醒扫描器失败: %v", err))
	}
	go reminder.StartScanner(scannerHandle, time.Duration(cfg.Reminder.ScanIntervalSeconds)*time.Second)

	// --- HTTP服务 ---
	gin.SetMode(cfg.Server.Mode)
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.Cors.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-User-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	api.SetupRoutes(router)

	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: router,
	}

	go func() {
		fmt.Printf("服务器已准备就绪，开始监听 %s\n", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic("Failed to start server: " + err.Error())
		}
	}()

	// --- 优雅停机 ---
	coordinator := shutdown.NewCoordinator(serviceManager)
	coordinator.ListenForSignalsAndShutdown(server)
}
