/*
 * @module service/init
 * @description 服务初始化模块，负责数据库连接、迁移、数据源装配和流水线初始化
 * @architecture 分层架构 - 服务层
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow 应用启动时执行初始化流程
 * @rules 确保所有依赖服务正常启动后才提供API服务；Redis为可选依赖，不可用时降级为单实例无缓存模式
 * @dependencies gorm.io/gorm, gorm.io/driver/postgres, github.com/go-redis/redis/v8
 * @refs service/pipeline/pipeline.go, service/datasource/
 */

package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"dataquality-service/service/cache"
	"dataquality-service/service/database"
	"dataquality-service/service/datasource"
	"dataquality-service/service/distributed_lock"
	"dataquality-service/service/event"
	"dataquality-service/service/metrics"
	"dataquality-service/service/models"
	"dataquality-service/service/pipeline"
	"dataquality-service/service/quality"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/cast"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	DB                   *gorm.DB
	GlobalCatalog        *quality.Catalog
	GlobalSourceRegistry *datasource.Registry
	GlobalEventService   *event.EventService
	GlobalCollector      *metrics.Collector
	GlobalScoreCache     *cache.ScoreCache
	GlobalPipeline       *pipeline.Pipeline

	mqttSource *datasource.MQTTSource
)

func init() {
	initDatabase()
	runMigrations()
	initServices()
}

// initDatabase 初始化数据库连接
func initDatabase() {
	var dsn string

	// 优先使用DATABASE_URL环境变量
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		dsn = databaseURL
	} else {
		// 使用分离的环境变量构建连接字符串
		host := getEnvWithDefault("DB_HOST", "localhost")
		port := getEnvWithDefault("DB_PORT", "5432")
		user := getEnvWithDefault("DB_USER", "postgres")
		password := getEnvWithDefault("DB_PASSWORD", "things2024")
		dbname := getEnvWithDefault("DB_NAME", "postgres")
		sslmode := getEnvWithDefault("DB_SSLMODE", "disable")
		schema := getEnvWithDefault("DB_SCHEMA", "public")

		dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s search_path=%s TimeZone=Asia/Shanghai",
			host, port, user, password, dbname, sslmode, schema)
	}

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	log.Println("数据库连接成功")
}

// getEnvWithDefault 获取环境变量，如果不存在则返回默认值
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// runMigrations 运行数据库迁移
func runMigrations() {
	log.Println("开始运行数据库迁移...")

	if err := database.AutoMigrate(DB); err != nil {
		log.Fatalf("数据库迁移失败: %v", err)
	}

	log.Println("数据库表结构迁移完成")
}

// initServices 初始化服务
func initServices() {
	GlobalCatalog = quality.NewCatalog()
	GlobalEventService = event.NewEventService()
	GlobalCollector = metrics.NewCollector()

	initDataSources()

	opts := pipeline.Options{
		ReconTolerance:    cast.ToFloat64(getEnvWithDefault("RECON_TOLERANCE", "0.01")),
		AnomalyWindowDays: cast.ToInt(getEnvWithDefault("ANOMALY_WINDOW_DAYS", "14")),
		AnomalySigma:      cast.ToFloat64(getEnvWithDefault("ANOMALY_SIGMA", "3.0")),
		LockTTL:           time.Duration(cast.ToInt(getEnvWithDefault("REFRESH_LOCK_TTL_SECONDS", "600"))) * time.Second,
	}

	GlobalPipeline = pipeline.New(DB, GlobalSourceRegistry, GlobalCatalog, opts)
	GlobalPipeline.SetEventService(GlobalEventService)
	GlobalPipeline.SetCollector(GlobalCollector)

	initRedis()

	log.Println("服务初始化完成")
}

// initDataSources 初始化数据源注册表
// 默认从暂存目录读取CSV文件，配置了消息中间件时按实体覆盖
func initDataSources() {
	stagingDir := getEnvWithDefault("STAGING_DIR", "./staging")
	encoding := getEnvWithDefault("STAGING_ENCODING", "utf-8")
	GlobalSourceRegistry = datasource.NewRegistry(datasource.NewCSVFileSource(stagingDir, encoding))

	// Kafka数据源，按实体订阅 {前缀}{实体} 主题
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		kafkaSource := datasource.NewKafkaSource(
			strings.Split(brokers, ","),
			getEnvWithDefault("KAFKA_TOPIC_PREFIX", "staging."),
			getEnvWithDefault("KAFKA_GROUP_ID", "dataquality-service"),
			time.Duration(cast.ToInt(getEnvWithDefault("KAFKA_POLL_TIMEOUT_SECONDS", "5")))*time.Second,
		)
		for _, entityName := range strings.Split(getEnvWithDefault("KAFKA_ENTITIES", ""), ",") {
			if entity, ok := models.ParseEntityType(entityName); ok {
				GlobalSourceRegistry.Override(entity, kafkaSource)
			}
		}
	}

	// MQTT数据源，物流回执类数据走MQTT推送
	if broker := os.Getenv("MQTT_BROKER"); broker != "" {
		mqttSource = datasource.NewMQTTSource(
			broker,
			getEnvWithDefault("MQTT_CLIENT_ID", "dataquality-service"),
			os.Getenv("MQTT_USERNAME"),
			os.Getenv("MQTT_PASSWORD"),
			getEnvWithDefault("MQTT_TOPIC_PREFIX", "staging"),
		)

		var mqttEntities []models.EntityType
		for _, entityName := range strings.Split(getEnvWithDefault("MQTT_ENTITIES", "deliveries"), ",") {
			if entity, ok := models.ParseEntityType(entityName); ok {
				mqttEntities = append(mqttEntities, entity)
			}
		}
		if err := mqttSource.Start(mqttEntities); err != nil {
			log.Printf("MQTT数据源启动失败: %v", err)
		} else {
			for _, entity := range mqttEntities {
				GlobalSourceRegistry.Override(entity, mqttSource)
			}
		}
	}
}

// initRedis 初始化Redis，提供分布式刷新锁和评分缓存
// Redis不可用时服务降级运行，不影响核心刷新能力
func initRedis() {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		log.Println("未配置REDIS_ADDR，跳过分布式锁和评分缓存初始化")
		return
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       cast.ToInt(getEnvWithDefault("REDIS_DB", "0")),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("Redis连接失败，降级为单实例无缓存模式: %v", err)
		return
	}

	GlobalScoreCache = cache.NewScoreCache(client)
	GlobalPipeline.SetLock(distributed_lock.NewRedisLock(client))
	GlobalPipeline.SetScoreCache(GlobalScoreCache)
	log.Println("Redis连接成功，分布式锁和评分缓存已启用")
}
