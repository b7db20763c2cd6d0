package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/poolkeeper/provider-pool-manager/internal/adminapi"
	"github.com/poolkeeper/provider-pool-manager/internal/config"
	"github.com/poolkeeper/provider-pool-manager/internal/db"
	"github.com/poolkeeper/provider-pool-manager/internal/events"
	"github.com/poolkeeper/provider-pool-manager/internal/logging"
	"github.com/poolkeeper/provider-pool-manager/internal/pool"
	"github.com/poolkeeper/provider-pool-manager/internal/stats"
	"github.com/poolkeeper/provider-pool-manager/internal/token"
)

const (
	// Version 项目版本
	Version = "0.1.0"
	// AppName 应用名称
	AppName = "poolmanagerd"
)

func main() {
	log.Printf("=== %s v%s ===\n", AppName, Version)
	log.Println("供应商池运行时管理守护进程")

	cfg, err := config.LoadConfig("")
	if err != nil {
		log.Fatalf("❌ 加载配置失败: %v", err)
	}

	logger := logging.New(logging.ParseLevel(cfg.Pool.LogLevel))

	database, err := db.InitDatabase(&cfg.Database)
	if err != nil {
		log.Fatalf("❌ 初始化数据库失败: %v", err)
	}
	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(database); err != nil {
			log.Fatalf("❌ 数据库迁移失败: %v", err)
		}
	}
	defer db.CloseDatabase(database)

	eventService := events.NewService(database)
	tokenService := token.NewService(token.NewRepository(database))
	requestCounter := stats.NewRequestCounter(time.Minute)

	manager, err := pool.NewManager(pool.ManagerConfig{
		PoolFilePath:        cfg.Pool.PoolFilePath,
		MaxErrorCount:       cfg.Pool.MaxErrorCount,
		HealthCheckInterval: cfg.Pool.HealthCheckInterval,
		SaveDebounceTime:    cfg.Pool.SaveDebounceTime,
		Events:              eventService,
		Logger:              logger,
		Proxy: pool.ProxySettings{
			Gemini: cfg.Pool.UseSystemProxyGemini,
			OpenAI: cfg.Pool.UseSystemProxyOpenAI,
			Claude: cfg.Pool.UseSystemProxyClaude,
			Qwen:   cfg.Pool.UseSystemProxyQwen,
			Kiro:   cfg.Pool.UseSystemProxyKiro,
		},
	})
	if err != nil {
		log.Fatalf("❌ 初始化供应商池失败: %v", err)
	}

	logger.Infof("已加载 %d 个 family: %v", len(manager.Families()), manager.Families())

	manager.PerformHealthChecks(context.Background(), true)
	manager.Start()
	logger.Infof("健康检查巡检已启动，周期 %s", cfg.Pool.HealthCheckInterval)

	router := adminapi.SetupRouter(manager, tokenService, eventService, requestCounter)
	srv := &http.Server{
		Addr:    ":" + strconv.Itoa(cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Infof("管理接口监听于 :%d", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("管理接口异常退出: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Infof("收到停机信号，开始优雅关闭")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("管理接口关闭异常: %v", err)
	}

	if err := manager.Stop(); err != nil {
		logger.Errorf("供应商池最终落盘失败: %v", err)
	} else {
		logger.Infof("供应商池状态已落盘")
	}
}
