/*
 * @module service/metrics/collector
 * @description Prometheus指标收集器，暴露质量评分、问题数量、异常点数量和刷新耗时
 * @architecture 观察者模式 - 指标注册到默认Registry，由/metrics端点暴露
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow 刷新完成 -> 指标更新 -> Prometheus抓取
 * @rules 指标更新失败不影响流水线；指标命名遵循prometheus规范
 * @dependencies github.com/prometheus/client_golang
 * @refs main.go, service/pipeline/pipeline.go
 */

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector 数据质量指标收集器
type Collector struct {
	dqScore         *prometheus.GaugeVec
	issueCount      *prometheus.GaugeVec
	goldCount       *prometheus.GaugeVec
	anomalyTotal    prometheus.Counter
	refreshTotal    *prometheus.CounterVec
	refreshDuration prometheus.Histogram
}

// NewCollector 创建并注册指标收集器
func NewCollector() *Collector {
	return &Collector{
		dqScore: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "dq_entity_score",
			Help: "实体级数据质量评分(0-1)",
		}, []string{"entity"}),
		issueCount: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "dq_entity_issue_count",
			Help: "实体最近一次刷新的问题记录数",
		}, []string{"entity"}),
		goldCount: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "dq_entity_gold_count",
			Help: "实体最近一次刷新的金表记录数",
		}, []string{"entity"}),
		anomalyTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dq_anomaly_flagged_total",
			Help: "累计标记的日指标异常点数量",
		}),
		refreshTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "dq_refresh_total",
			Help: "按结果状态统计的刷新次数",
		}, []string{"status"}),
		refreshDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "dq_refresh_duration_seconds",
			Help:    "刷新流水线耗时分布",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
	}
}

// RecordScore 更新实体评分指标
func (c *Collector) RecordScore(entity string, goldCount, issueCount int64, score float64) {
	c.dqScore.WithLabelValues(entity).Set(score)
	c.goldCount.WithLabelValues(entity).Set(float64(goldCount))
	c.issueCount.WithLabelValues(entity).Set(float64(issueCount))
}

// RecordAnomalies 累计异常点数量
func (c *Collector) RecordAnomalies(count int) {
	c.anomalyTotal.Add(float64(count))
}

// RecordRefresh 记录一次刷新的状态和耗时
func (c *Collector) RecordRefresh(status string, seconds float64) {
	c.refreshTotal.WithLabelValues(status).Inc()
	c.refreshDuration.Observe(seconds)
}
