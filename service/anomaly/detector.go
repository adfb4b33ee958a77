/*
 * @module service/anomaly/detector
 * @description 日指标异常检测器，基于滚动窗口均值和样本标准差标记越界点
 * @architecture 滑动窗口算法 - 增量维护窗口内的和与平方和
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow 序列按日期升序遍历 -> 窗口淘汰过期点 -> 统计量计算 -> 越界判定 -> 当前点入窗
 * @rules 窗口覆盖d-N..d-1仅使用历史数据；历史不足N天不标记；标准差为0时任何偏离都标记，等于均值不标记
 * @dependencies dataquality-service/service/models, math
 * @refs service/pipeline
 */

package anomaly

import (
	"math"
	"sort"
	"time"

	"dataquality-service/service/models"
)

// 默认检测参数
const (
	DefaultWindowDays     = 14
	DefaultSigmaThreshold = 3.0
)

// Point 日指标数据点
type Point struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Detector 异常检测器
type Detector struct {
	windowDays     int
	sigmaThreshold float64
}

// NewDetector 创建检测器，非法参数回退到默认值
func NewDetector(windowDays int, sigmaThreshold float64) *Detector {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	if sigmaThreshold <= 0 {
		sigmaThreshold = DefaultSigmaThreshold
	}
	return &Detector{windowDays: windowDays, sigmaThreshold: sigmaThreshold}
}

// window 滑动窗口，增量维护和与平方和
type window struct {
	points []Point
	sum    float64
	sumSq  float64
}

func (w *window) push(p Point) {
	w.points = append(w.points, p)
	w.sum += p.Value
	w.sumSq += p.Value * p.Value
}

// evictBefore 淘汰早于cutoff的点
func (w *window) evictBefore(cutoff time.Time) {
	for len(w.points) > 0 && w.points[0].Date.Before(cutoff) {
		head := w.points[0]
		w.points = w.points[1:]
		w.sum -= head.Value
		w.sumSq -= head.Value * head.Value
	}
}

func (w *window) size() int {
	return len(w.points)
}

// stats 返回窗口内均值和样本标准差
func (w *window) stats() (mean, stddev float64) {
	n := float64(len(w.points))
	if n == 0 {
		return 0, 0
	}
	mean = w.sum / n
	if n < 2 {
		return mean, 0
	}
	variance := (w.sumSq - w.sum*w.sum/n) / (n - 1)
	if variance < 0 {
		variance = 0 // 浮点舍入
	}
	return mean, math.Sqrt(variance)
}

// Detect 对单一指标的日序列执行异常检测
// 序列按日期升序处理；每个日期d的窗口覆盖d-windowDays..d-1，仅使用历史数据；
// 窗口内不足windowDays个点时视为历史不足，不标记异常
func (d *Detector) Detect(metricName string, series []Point) []models.DailyMetric {
	ordered := make([]Point, len(series))
	copy(ordered, series)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Date.Before(ordered[j].Date)
	})

	w := &window{}
	results := make([]models.DailyMetric, 0, len(ordered))
	for _, p := range ordered {
		w.evictBefore(p.Date.AddDate(0, 0, -d.windowDays))
		mean, stddev := w.stats()
		complete := w.size() >= d.windowDays

		flagged := false
		if complete {
			deviation := math.Abs(p.Value - mean)
			if stddev == 0 {
				// 常量历史：任何偏离都标记，等于均值不标记
				flagged = deviation > 0
			} else {
				flagged = deviation > d.sigmaThreshold*stddev
			}
		}

		results = append(results, models.DailyMetric{
			MetricDate:     p.Date,
			MetricName:     metricName,
			Value:          p.Value,
			RollingMean:    mean,
			RollingStddev:  stddev,
			WindowComplete: complete,
			AnomalyFlag:    flagged,
		})
		w.push(p)
	}
	return results
}
