/*
 * @module service/anomaly/detector_test
 * @description 日指标异常检测器测试，覆盖窗口完整性、越界判定和常量历史
 * @architecture 测试层
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow 日序列输入 -> 滚动窗口检测 -> 标记验证
 * @rules 窗口仅使用历史数据；历史不足不标记；标准差为0时任何偏离都标记
 * @dependencies testing, github.com/stretchr/testify/assert
 * @refs detector.go
 */

package anomaly

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(offset int) time.Time {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, offset)
}

// 构造14天交替95/105的历史，均值100，样本标准差约5.19
func alternatingHistory() []Point {
	series := make([]Point, 0, 14)
	for i := 0; i < 14; i++ {
		value := 95.0
		if i%2 == 1 {
			value = 105.0
		}
		series = append(series, Point{Date: day(i), Value: value})
	}
	return series
}

func TestDetectFlagsOutlier(t *testing.T) {
	detector := NewDetector(14, 3.0)

	series := append(alternatingHistory(), Point{Date: day(14), Value: 130})
	results := detector.Detect("orders_count", series)

	assert.Len(t, results, 15)
	last := results[14]
	assert.True(t, last.WindowComplete)
	assert.InDelta(t, 100.0, last.RollingMean, 1e-9)
	assert.InDelta(t, 5.19, last.RollingStddev, 0.01)
	// 偏离30超过3σ≈15.6，标记异常
	assert.True(t, last.AnomalyFlag)
}

func TestDetectDoesNotFlagInlier(t *testing.T) {
	detector := NewDetector(14, 3.0)

	series := append(alternatingHistory(), Point{Date: day(14), Value: 110})
	results := detector.Detect("orders_count", series)

	last := results[14]
	assert.True(t, last.WindowComplete)
	// 偏离10未超过3σ，不标记
	assert.False(t, last.AnomalyFlag)
}

func TestDetectIncompleteWindowNeverFlags(t *testing.T) {
	detector := NewDetector(14, 3.0)

	// 仅13天历史，极端值也不标记
	series := alternatingHistory()[:13]
	series = append(series, Point{Date: day(13), Value: 10000})
	results := detector.Detect("orders_count", series)

	last := results[13]
	assert.False(t, last.WindowComplete)
	assert.False(t, last.AnomalyFlag)
	for _, m := range results {
		assert.False(t, m.AnomalyFlag)
	}
}

func TestDetectConstantHistory(t *testing.T) {
	detector := NewDetector(14, 3.0)

	series := make([]Point, 0, 16)
	for i := 0; i < 14; i++ {
		series = append(series, Point{Date: day(i), Value: 100})
	}
	series = append(series,
		Point{Date: day(14), Value: 100},    // 等于均值不标记
		Point{Date: day(15), Value: 100.01}, // 标准差为0时任何偏离都标记
	)

	results := detector.Detect("revenue_captured", series)

	assert.False(t, results[14].AnomalyFlag)
	assert.Equal(t, float64(0), results[14].RollingStddev)
	assert.True(t, results[15].AnomalyFlag)
}

func TestDetectWindowUsesOnlyHistory(t *testing.T) {
	detector := NewDetector(14, 3.0)

	// 当前点的取值不参与自身窗口统计
	series := append(alternatingHistory(), Point{Date: day(14), Value: 130})
	results := detector.Detect("orders_count", series)

	assert.InDelta(t, 100.0, results[14].RollingMean, 1e-9)
}

func TestDetectSortsUnorderedInput(t *testing.T) {
	detector := NewDetector(14, 3.0)

	series := append(alternatingHistory(), Point{Date: day(14), Value: 130})
	// 倒序输入，检测前按日期排序
	reversed := make([]Point, 0, len(series))
	for i := len(series) - 1; i >= 0; i-- {
		reversed = append(reversed, series[i])
	}

	results := detector.Detect("orders_count", reversed)

	assert.Len(t, results, 15)
	assert.True(t, results[14].AnomalyFlag)
	assert.Equal(t, day(14), results[14].MetricDate)
}

func TestDetectGapEvictsStalePoints(t *testing.T) {
	detector := NewDetector(14, 3.0)

	// 序列中断30天后，窗口内旧点全部过期，重新累计
	series := alternatingHistory()
	series = append(series, Point{Date: day(45), Value: 500})

	results := detector.Detect("orders_count", series)

	last := results[14]
	assert.False(t, last.WindowComplete)
	assert.False(t, last.AnomalyFlag)
}

func TestDetectEmptySeries(t *testing.T) {
	detector := NewDetector(14, 3.0)

	results := detector.Detect("orders_count", nil)

	assert.Empty(t, results)
}
