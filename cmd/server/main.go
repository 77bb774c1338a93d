// Package main 是应用程序的入口点。
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"electrical-qa-go/internal/config"
	"electrical-qa-go/internal/handler"
	"electrical-qa-go/internal/middleware"
	"electrical-qa-go/internal/pipeline"
	"electrical-qa-go/internal/repository"
	"electrical-qa-go/internal/service"
	"electrical-qa-go/pkg/database"
	"electrical-qa-go/pkg/es"
	"electrical-qa-go/pkg/kafka"
	"electrical-qa-go/pkg/llm"
	"electrical-qa-go/pkg/log"
	"electrical-qa-go/pkg/storage"
	"electrical-qa-go/pkg/token"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	configPath := flag.String("config", "./configs/config.yaml", "path to the YAML config file")
	envPath := flag.String("env", ".env", "optional dotenv file loaded before the config")
	flag.Parse()

	// 1. 初始化配置
	if err := config.LoadDotEnv(*envPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg := config.Init(*configPath)

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")
	if cfg.LLM.APIKey == "" {
		log.Warnf("未配置 GROQ_API_KEY，所有提问都会返回 '%s'", llm.ErrNoAPIKey)
	}

	// 3. 初始化数据库和 Redis
	db := database.InitMySQL(cfg.Database.MySQL.DSN)
	rdb := database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)

	// 4. 可选组件：未启用时使用 nil 接口，由下游替换为空实现
	var (
		index    service.QuestionIndex
		indexer  pipeline.Indexer
		store    service.TranscriptStore
		archiver pipeline.Archiver
	)
	if cfg.Elasticsearch.Enabled {
		esClient, err := es.InitES(cfg.Elasticsearch)
		if err != nil {
			log.Fatal("Elasticsearch 初始化失败", err)
		}
		index, indexer = esClient, esClient
	} else {
		log.Info("Elasticsearch 未启用，搜索接口将返回 503")
	}
	if cfg.MinIO.Enabled {
		minioStore, err := storage.InitMinIO(cfg.MinIO)
		if err != nil {
			log.Fatal("MinIO 初始化失败", err)
		}
		store, archiver = minioStore, minioStore
	} else {
		log.Info("MinIO 未启用，归档下载接口将返回 503")
	}

	// 5. 初始化 Repository
	userRepository := repository.NewUserRepository(db)
	questionRepository := repository.NewQuestionRepository(db)
	answerRepository := repository.NewAnswerRepository(db)
	tokenRepository := repository.NewTokenRepository(rdb)

	// 6. 初始化索引流水线与任务发布者
	processor := pipeline.NewProcessor(indexer, archiver)
	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	defer stopConsumer()

	var publisher service.TaskPublisher
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka)
		defer func() {
			if err := producer.Close(); err != nil {
				log.Errorf("关闭 Kafka 生产者失败: %v", err)
			}
		}()
		publisher = producer
		go kafka.StartConsumer(consumerCtx, cfg.Kafka, processor, rdb)
	} else {
		log.Info("Kafka 未启用，问答在请求内直接写入索引与归档")
		publisher = pipeline.DirectPublisher{Processor: processor}
	}

	// 7. 初始化 Service (依赖注入)
	jwtManager := token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpireHours, cfg.JWT.RefreshTokenExpireDays)
	llmClient := llm.NewClient(cfg.LLM)
	userService := service.NewUserService(userRepository, tokenRepository, jwtManager)
	questionService := service.NewQuestionService(questionRepository, answerRepository, userRepository, llmClient, publisher)
	searchService := service.NewSearchService(index, store)
	adminService := service.NewAdminService(questionRepository, answerRepository, userRepository, index, store)

	// 8. 初始化管理员账号
	if err := userService.EnsureAdmin(cfg.Admin); err != nil {
		log.Fatal("初始化管理员账号失败", err)
	}

	// 9. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery(), cors.New(corsConfig(cfg.Server.CORSOrigins)))

	// 10. 注册路由
	handler.RegisterRoutes(r, jwtManager, handler.Services{
		User:     userService,
		Question: questionService,
		Search:   searchService,
		Admin:    adminService,
	})

	// 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("HTTP 服务器关闭失败: %v", err)
	}

	// 停止 Kafka 消费者
	stopConsumer()
	log.Info("服务已优雅关闭")
}

// corsConfig 根据允许的来源列表构造 CORS 配置，"*" 表示允许所有来源（此时不携带凭证）。
func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	if len(origins) == 0 {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c
}
