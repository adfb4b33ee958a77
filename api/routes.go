/*
 * @module api/routes
 * @description API路由配置模块，负责初始化和配置所有HTTP路由
 * @architecture RESTful API架构
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow 无状态HTTP请求处理
 * @rules 遵循RESTful API设计规范，统一错误处理和响应格式
 * @dependencies github.com/go-chi/chi/v5, github.com/go-chi/cors, github.com/go-chi/render
 * @refs service/init.go
 */

package api

import (
	"dataquality-service/api/controllers"
	"dataquality-service/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
)

// InitRoute 初始化所有API路由
func InitRoute(r *chi.Mux) {
	// 基础中间件
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	// CORS配置
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// 健康检查
	healthController := controllers.NewHealthController()
	r.Get("/health", healthController.Health)
	r.Get("/ready", healthController.Ready)

	// SSE事件订阅
	eventController := controllers.NewEventController(service.GlobalEventService)
	r.Get("/sse/{user_name}", eventController.HandleSSE)

	// 刷新管理
	r.Route("/refresh", func(r chi.Router) {
		refreshController := controllers.NewRefreshController(service.GlobalPipeline, service.DB)
		r.Post("/", refreshController.TriggerRefresh)
		r.Get("/latest", refreshController.GetLatestRefresh)
		r.Get("/{id}", refreshController.GetRefresh)
	})

	// 数据质量查询
	r.Route("/quality", func(r chi.Router) {
		qualityController := controllers.NewQualityController(service.DB, service.GlobalCatalog, service.GlobalScoreCache)
		r.Get("/rules", qualityController.GetRules)
		r.Get("/gold/{entity}", qualityController.GetGoldRecords)
		r.Get("/issues/{entity}", qualityController.GetIssueRecords)
		r.Get("/scores", qualityController.GetScores)
		r.Get("/scores/{entity}", qualityController.GetScoreHistory)
	})

	// 订单对账
	r.Route("/recon", func(r chi.Router) {
		reconController := controllers.NewReconController(service.DB)
		r.Get("/records", reconController.GetReconRecords)
		r.Get("/summary", reconController.GetReconSummary)
	})

	// 日指标与异常检测
	r.Route("/metrics-series", func(r chi.Router) {
		metricsController := controllers.NewMetricsController(service.DB)
		r.Get("/daily", metricsController.GetDailyMetrics)
		r.Get("/anomalies", metricsController.GetAnomalies)
		r.Get("/summary", metricsController.GetAnomalySummary)
	})
}
