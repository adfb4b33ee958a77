/*
 * @module api/controllers/metrics_controller
 * @description 日指标控制器，提供带异常标记的日指标查询和异常汇总指标
 * @architecture MVC架构 - 控制器层
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow 请求接收 -> 日指标表查询 -> 汇总计算 -> 响应返回
 * @rules 异常率按窗口内有指标的日期去重计算，窗口从指标最大日期向前回溯
 * @dependencies gorm.io/gorm
 * @refs service/anomaly/detector.go
 */

package controllers

import (
	"net/http"
	"strconv"
	"time"

	"dataquality-service/service/models"

	"github.com/go-chi/render"
	"gorm.io/gorm"
)

// MetricsController 日指标控制器
type MetricsController struct {
	db *gorm.DB
}

// NewMetricsController 创建日指标控制器实例
func NewMetricsController(db *gorm.DB) *MetricsController {
	return &MetricsController{db: db}
}

// AnomalySummary 异常汇总指标
type AnomalySummary struct {
	AnomalyCount int64   `json:"anomaly_count"`
	WindowDays   int     `json:"window_days"`
	AnomalyRate  float64 `json:"anomaly_rate"`
}

// GetDailyMetrics 获取日指标
// @Summary 获取带异常标记的日指标
// @Description 按日期升序返回日指标及其滚动均值、滚动标准差和异常标记
// @Tags 日指标
// @Produce json
// @Param metric_name query string false "指标名称" Enums(orders_count,revenue_captured)
// @Success 200 {object} APIResponse{data=[]models.DailyMetric}
// @Failure 500 {object} APIResponse
// @Router /metrics-series/daily [get]
func (c *MetricsController) GetDailyMetrics(w http.ResponseWriter, r *http.Request) {
	query := c.db.Model(&models.DailyMetric{})
	if name := r.URL.Query().Get("metric_name"); name != "" {
		query = query.Where("metric_name = ?", name)
	}
	var metrics []models.DailyMetric
	if err := query.Order("metric_name, metric_date").Find(&metrics).Error; err != nil {
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, Fail("日指标查询失败: "+err.Error()))
		return
	}
	render.JSON(w, r, OK("获取日指标成功", metrics))
}

// GetAnomalies 获取异常点
// @Summary 获取被标记为异常的日指标点
// @Description 返回偏离滚动均值超过阈值的日指标点
// @Tags 日指标
// @Produce json
// @Success 200 {object} APIResponse{data=[]models.DailyMetric}
// @Failure 500 {object} APIResponse
// @Router /metrics-series/anomalies [get]
func (c *MetricsController) GetAnomalies(w http.ResponseWriter, r *http.Request) {
	var metrics []models.DailyMetric
	if err := c.db.Where("anomaly_flag = ?", true).
		Order("metric_name, metric_date").Find(&metrics).Error; err != nil {
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, Fail("异常点查询失败: "+err.Error()))
		return
	}
	render.JSON(w, r, OK("获取异常点成功", metrics))
}

// GetAnomalySummary 获取异常汇总指标
// @Summary 获取异常汇总指标
// @Description 返回回溯窗口内的异常点数量和异常率，异常率=异常点数/窗口内有指标的去重日期数
// @Tags 日指标
// @Produce json
// @Param window_days query int false "回溯窗口天数" default(30)
// @Success 200 {object} APIResponse{data=AnomalySummary}
// @Failure 500 {object} APIResponse
// @Router /metrics-series/summary [get]
func (c *MetricsController) GetAnomalySummary(w http.ResponseWriter, r *http.Request) {
	windowDays, _ := strconv.Atoi(r.URL.Query().Get("window_days"))
	if windowDays <= 0 {
		windowDays = 30
	}
	summary := AnomalySummary{WindowDays: windowDays}

	var latest struct {
		MaxDate *time.Time
	}
	if err := c.db.Model(&models.DailyMetric{}).
		Select("MAX(metric_date) AS max_date").Scan(&latest).Error; err != nil {
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, Fail("异常汇总查询失败: "+err.Error()))
		return
	}
	if latest.MaxDate == nil {
		render.JSON(w, r, OK("获取异常汇总成功", summary))
		return
	}

	// 窗口从指标最大日期向前回溯windowDays天
	cutoff := latest.MaxDate.AddDate(0, 0, -windowDays)

	if err := c.db.Model(&models.DailyMetric{}).
		Where("metric_date > ? AND anomaly_flag = ?", cutoff, true).
		Count(&summary.AnomalyCount).Error; err != nil {
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, Fail("异常汇总查询失败: "+err.Error()))
		return
	}

	var dateCount int64
	if err := c.db.Model(&models.DailyMetric{}).
		Where("metric_date > ?", cutoff).
		Distinct("metric_date").Count(&dateCount).Error; err != nil {
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, Fail("异常汇总查询失败: "+err.Error()))
		return
	}
	if dateCount > 0 {
		summary.AnomalyRate = float64(summary.AnomalyCount) / float64(dateCount)
	}
	render.JSON(w, r, OK("获取异常汇总成功", summary))
}
