/*
 * @module service/recon/engine_test
 * @description 订单对账引擎测试，覆盖金额匹配、容差边界和全外连接语义
 * @architecture 测试层
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow 金表记录输入 -> 对账计算 -> 差额与标记验证
 * @rules 仅统计captured状态的支付，差额绝对值超过容差才标记
 * @dependencies testing, github.com/stretchr/testify/assert
 * @refs engine.go
 */

package recon

import (
	"testing"

	"dataquality-service/service/models"
	"dataquality-service/testutil"

	"github.com/stretchr/testify/assert"
)

func TestReconcileMatchedOrder(t *testing.T) {
	engine := NewEngine(DefaultTolerance)

	// 明细合计 2*50=100，支付合计 100，无差额
	items := []*models.Record{
		testutil.NewOrderItemRecord("I1", "O1", "P1",
			testutil.WithField("quantity", 2), testutil.WithField("unit_price", 50.0)),
	}
	payments := []*models.Record{
		testutil.NewPaymentRecord("PM1", "O1", 100.0),
	}

	results := engine.Reconcile(items, payments)

	assert.Len(t, results, 1)
	assert.Equal(t, "O1", results[0].OrderID)
	assert.InDelta(t, 100.0, results[0].ItemsTotal, 1e-9)
	assert.InDelta(t, 100.0, results[0].PaymentsTotal, 1e-9)
	assert.InDelta(t, 0.0, results[0].Delta, 1e-9)
	assert.False(t, results[0].StatusMismatchFlag)
}

func TestReconcileUnderpaidOrder(t *testing.T) {
	engine := NewEngine(DefaultTolerance)

	// 明细合计 100，支付 80，差额 -20 标记不匹配
	items := []*models.Record{
		testutil.NewOrderItemRecord("I1", "O1", "P1",
			testutil.WithField("quantity", 4), testutil.WithField("unit_price", 25.0)),
	}
	payments := []*models.Record{
		testutil.NewPaymentRecord("PM1", "O1", 80.0),
	}

	results := engine.Reconcile(items, payments)

	assert.Len(t, results, 1)
	assert.InDelta(t, -20.0, results[0].Delta, 1e-9)
	assert.True(t, results[0].StatusMismatchFlag)
}

func TestReconcileIgnoresNonCapturedPayments(t *testing.T) {
	engine := NewEngine(DefaultTolerance)

	items := []*models.Record{
		testutil.NewOrderItemRecord("I1", "O1", "P1",
			testutil.WithField("quantity", 1), testutil.WithField("unit_price", 60.0)),
	}
	payments := []*models.Record{
		testutil.NewPaymentRecord("PM1", "O1", 60.0),
		testutil.NewPaymentRecord("PM2", "O1", 60.0, testutil.WithField("status", "refunded")),
		testutil.NewPaymentRecord("PM3", "O1", 5.0, testutil.WithField("status", "failed")),
	}

	results := engine.Reconcile(items, payments)

	assert.Len(t, results, 1)
	assert.InDelta(t, 60.0, results[0].PaymentsTotal, 1e-9)
	assert.False(t, results[0].StatusMismatchFlag)
}

func TestReconcileCapturedStatusCaseInsensitive(t *testing.T) {
	engine := NewEngine(DefaultTolerance)

	items := []*models.Record{
		testutil.NewOrderItemRecord("I1", "O1", "P1",
			testutil.WithField("quantity", 1), testutil.WithField("unit_price", 30.0)),
	}
	payments := []*models.Record{
		testutil.NewPaymentRecord("PM1", "O1", 30.0, testutil.WithField("status", "CAPTURED")),
	}

	results := engine.Reconcile(items, payments)

	assert.Len(t, results, 1)
	assert.InDelta(t, 30.0, results[0].PaymentsTotal, 1e-9)
	assert.False(t, results[0].StatusMismatchFlag)
}

func TestReconcileFullOuterJoin(t *testing.T) {
	engine := NewEngine(DefaultTolerance)

	// O1仅有明细，O2仅有支付，两侧都要出现在结果中
	items := []*models.Record{
		testutil.NewOrderItemRecord("I1", "O1", "P1",
			testutil.WithField("quantity", 1), testutil.WithField("unit_price", 40.0)),
	}
	payments := []*models.Record{
		testutil.NewPaymentRecord("PM1", "O2", 25.0),
	}

	results := engine.Reconcile(items, payments)

	assert.Len(t, results, 2)
	assert.Equal(t, "O1", results[0].OrderID)
	assert.InDelta(t, -40.0, results[0].Delta, 1e-9)
	assert.True(t, results[0].StatusMismatchFlag)

	assert.Equal(t, "O2", results[1].OrderID)
	assert.InDelta(t, 25.0, results[1].Delta, 1e-9)
	assert.True(t, results[1].StatusMismatchFlag)
}

func TestReconcileToleranceBoundary(t *testing.T) {
	engine := NewEngine(0.5)

	// 差额恰好等于容差不标记，超过容差才标记
	items := []*models.Record{
		testutil.NewOrderItemRecord("I1", "O1", "P1",
			testutil.WithField("quantity", 1), testutil.WithField("unit_price", 100.0)),
		testutil.NewOrderItemRecord("I2", "O2", "P1",
			testutil.WithField("quantity", 1), testutil.WithField("unit_price", 100.0)),
	}
	payments := []*models.Record{
		testutil.NewPaymentRecord("PM1", "O1", 100.5),
		testutil.NewPaymentRecord("PM2", "O2", 100.75),
	}

	results := engine.Reconcile(items, payments)

	assert.Len(t, results, 2)
	assert.False(t, results[0].StatusMismatchFlag)
	assert.True(t, results[1].StatusMismatchFlag)
}

func TestReconcileEmptyInput(t *testing.T) {
	engine := NewEngine(DefaultTolerance)

	results := engine.Reconcile(nil, nil)

	assert.Empty(t, results)
}
