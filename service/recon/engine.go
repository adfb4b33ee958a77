/*
 * @module service/recon/engine
 * @description 财务对账引擎，按订单对比订单明细合计与已捕获支付合计，输出差额和不匹配标记
 * @architecture 分层架构 - 业务服务层
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow 明细分组求和 -> 支付分组求和 -> 全外连接 -> 差额与容差比较
 * @rules 仅统计capture状态为captured的支付；单边存在的订单不报错，缺失侧合计按0处理；金额比较使用容差而非精确相等
 * @dependencies dataquality-service/service/models, math, sort
 * @refs service/quality/partitioner.go, service/pipeline
 */

package recon

import (
	"math"
	"sort"
	"strings"

	"dataquality-service/service/models"
)

// DefaultTolerance 对账差额默认容差（一分钱）
const DefaultTolerance = 0.01

// capturedStatus 计入对账的支付capture状态
const capturedStatus = "captured"

// Engine 对账引擎
type Engine struct {
	tolerance float64
}

// NewEngine 创建对账引擎，容差为负时回退到默认值
func NewEngine(tolerance float64) *Engine {
	if tolerance < 0 {
		tolerance = DefaultTolerance
	}
	return &Engine{tolerance: tolerance}
}

// Tolerance 返回当前容差
func (e *Engine) Tolerance() float64 {
	return e.tolerance
}

// Reconcile 对金表订单明细与金表支付执行订单级对账
// 任一数据源出现的order_id都会产出一条对账记录，缺失侧合计为0；
// delta = payments_total - items_total，|delta|超过容差时标记不匹配
func (e *Engine) Reconcile(orderItems, payments []*models.Record) []models.ReconRecord {
	itemTotals := make(map[string]float64)
	for _, item := range orderItems {
		orderID := strings.TrimSpace(item.StringField("order_id"))
		if orderID == "" {
			continue
		}
		quantity, ok1 := item.FloatField("quantity")
		unitPrice, ok2 := item.FloatField("unit_price")
		if !ok1 || !ok2 {
			continue
		}
		itemTotals[orderID] += quantity * unitPrice
	}

	paymentTotals := make(map[string]float64)
	for _, payment := range payments {
		orderID := strings.TrimSpace(payment.StringField("order_id"))
		if orderID == "" {
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(payment.StringField("status")), capturedStatus) {
			continue
		}
		amount, ok := payment.FloatField("amount")
		if !ok {
			continue
		}
		paymentTotals[orderID] += amount
	}

	// 全外连接：收集双方出现过的order_id，排序保证输出确定性
	orderIDs := make([]string, 0, len(itemTotals)+len(paymentTotals))
	seen := make(map[string]bool, len(itemTotals)+len(paymentTotals))
	for orderID := range itemTotals {
		seen[orderID] = true
		orderIDs = append(orderIDs, orderID)
	}
	for orderID := range paymentTotals {
		if !seen[orderID] {
			orderIDs = append(orderIDs, orderID)
		}
	}
	sort.Strings(orderIDs)

	results := make([]models.ReconRecord, 0, len(orderIDs))
	for _, orderID := range orderIDs {
		itemsTotal := itemTotals[orderID]
		paymentsTotal := paymentTotals[orderID]
		delta := paymentsTotal - itemsTotal
		results = append(results, models.ReconRecord{
			OrderID:            orderID,
			ItemsTotal:         itemsTotal,
			PaymentsTotal:      paymentsTotal,
			Delta:              delta,
			StatusMismatchFlag: math.Abs(delta) > e.tolerance,
		})
	}
	return results
}
