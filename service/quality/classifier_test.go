/*
 * @module service/quality/classifier_test
 * @description 记录分类器测试，覆盖规则评估、分区语义和批次结构预检
 * @architecture 测试层
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow 测试数据输入 -> 分类器应用规则 -> 标记与分区验证
 * @rules 分类结果确定性，标记向量完整，金表记录不携带标记
 * @dependencies testing, github.com/stretchr/testify/assert
 * @refs classifier.go, partitioner.go
 */

package quality

import (
	"testing"

	"dataquality-service/service/models"
	"dataquality-service/testutil"

	"github.com/stretchr/testify/assert"
)

func TestClassifyValidCustomers(t *testing.T) {
	classifier := NewClassifier(NewCatalog())

	records := []*models.Record{
		testutil.NewCustomerRecord("C1"),
		testutil.NewCustomerRecord("C2"),
	}
	annotated, err := classifier.Classify(models.EntityCustomer, records, nil)

	assert.NoError(t, err)
	assert.Len(t, annotated, 2)
	for _, r := range annotated {
		assert.False(t, r.HasIssue)
		// 每条记录都携带完整的标记向量
		assert.False(t, r.Flags["missing_customer_id"])
		assert.False(t, r.Flags["dup_customer_id"])
		assert.False(t, r.Flags["missing_email"])
		assert.False(t, r.Flags["invalid_state"])
	}
}

func TestClassifyFlagsMissingEmail(t *testing.T) {
	classifier := NewClassifier(NewCatalog())

	records := []*models.Record{
		testutil.NewCustomerRecord("C1", testutil.WithField("email", nil)),
		testutil.NewCustomerRecord("C2", testutil.WithField("email", "   ")),
		testutil.NewCustomerRecord("C3"),
	}
	annotated, err := classifier.Classify(models.EntityCustomer, records, nil)

	assert.NoError(t, err)
	assert.True(t, annotated[0].Flags["missing_email"])
	assert.True(t, annotated[1].Flags["missing_email"])
	assert.False(t, annotated[2].Flags["missing_email"])
	assert.True(t, annotated[0].HasIssue)
	assert.False(t, annotated[2].HasIssue)
}

func TestClassifyFlagsInvalidState(t *testing.T) {
	classifier := NewClassifier(NewCatalog())

	records := []*models.Record{
		testutil.NewCustomerRecord("C1", testutil.WithField("state", "ZZ")),
		testutil.NewCustomerRecord("C2", testutil.WithField("state", "ny")), // 大小写不敏感
	}
	annotated, err := classifier.Classify(models.EntityCustomer, records, nil)

	assert.NoError(t, err)
	assert.True(t, annotated[0].Flags["invalid_state"])
	assert.False(t, annotated[1].Flags["invalid_state"])
}

func TestClassifyFlagsAllDuplicates(t *testing.T) {
	classifier := NewClassifier(NewCatalog())

	// 重复主键的所有记录都被标记，与输入顺序无关
	records := []*models.Record{
		testutil.NewCustomerRecord("C1"),
		testutil.NewCustomerRecord("C1"),
		testutil.NewCustomerRecord("C2"),
	}
	annotated, err := classifier.Classify(models.EntityCustomer, records, nil)

	assert.NoError(t, err)
	assert.True(t, annotated[0].Flags["dup_customer_id"])
	assert.True(t, annotated[1].Flags["dup_customer_id"])
	assert.False(t, annotated[2].Flags["dup_customer_id"])
}

func TestClassifyMissingKeyNotCountedAsDuplicate(t *testing.T) {
	classifier := NewClassifier(NewCatalog())

	// 主键缺失是完整性问题，不参与唯一性判定
	records := []*models.Record{
		testutil.NewCustomerRecord("C1", testutil.WithField("customer_id", "")),
		testutil.NewCustomerRecord("C2", testutil.WithField("customer_id", nil)),
		testutil.NewCustomerRecord("C3"),
	}
	annotated, err := classifier.Classify(models.EntityCustomer, records, nil)

	assert.NoError(t, err)
	assert.True(t, annotated[0].Flags["missing_customer_id"])
	assert.False(t, annotated[0].Flags["dup_customer_id"])
	assert.True(t, annotated[1].Flags["missing_customer_id"])
	assert.False(t, annotated[1].Flags["dup_customer_id"])
	assert.False(t, annotated[2].HasIssue)
}

func TestClassifyOrderReferentialAndTemporal(t *testing.T) {
	classifier := NewClassifier(NewCatalog())

	ctx := NewContext()
	ctx.SetKeySet(models.EntityCustomer, map[string]bool{"C1": true})
	ctx.IndexField(models.EntityCustomer, "C1", "signup_date", "2024-02-01")

	records := []*models.Record{
		testutil.NewOrderRecord("O1", "C1", testutil.WithField("order_datetime", "2024-03-01T08:00:00Z")),
		testutil.NewOrderRecord("O2", "C9"), // 客户不存在
		testutil.NewOrderRecord("O3", "C1", testutil.WithField("order_datetime", "2024-01-15T08:00:00Z")), // 早于注册
	}
	annotated, err := classifier.Classify(models.EntityOrder, records, ctx)

	assert.NoError(t, err)
	assert.False(t, annotated[0].HasIssue)
	assert.True(t, annotated[1].Flags["fk_customer_orphan"])
	assert.True(t, annotated[2].Flags["order_before_signup"])
}

func TestClassifyOrderItemRules(t *testing.T) {
	classifier := NewClassifier(NewCatalog())

	ctx := NewContext()
	ctx.SetKeySet(models.EntityProduct, map[string]bool{"P1": true})

	records := []*models.Record{
		testutil.NewOrderItemRecord("I1", "O1", "P1"),
		testutil.NewOrderItemRecord("I2", "O1", "P1", testutil.WithField("quantity", 0)),
		testutil.NewOrderItemRecord("I3", "O1", "P1", testutil.WithField("unit_price", 0)),
		testutil.NewOrderItemRecord("I4", "O1", "P9"), // 商品不存在
		testutil.NewOrderItemRecord("I5", "O1", "P1", testutil.WithField("quantity", "abc")),
	}
	annotated, err := classifier.Classify(models.EntityOrderItem, records, ctx)

	assert.NoError(t, err)
	assert.False(t, annotated[0].HasIssue)
	assert.True(t, annotated[1].Flags["bad_quantity"])
	assert.True(t, annotated[2].Flags["bad_unit_price"]) // 单价必须严格为正
	assert.True(t, annotated[3].Flags["fk_product_orphan"])
	assert.True(t, annotated[4].Flags["bad_quantity"]) // 不可解析按违规处理
}

func TestClassifyMissingContextFlagsReferential(t *testing.T) {
	classifier := NewClassifier(NewCatalog())

	// 未注入商品键集合时外键规则按违规标记，不中断分类
	records := []*models.Record{testutil.NewOrderItemRecord("I1", "O1", "P1")}
	annotated, err := classifier.Classify(models.EntityOrderItem, records, NewContext())

	assert.NoError(t, err)
	assert.True(t, annotated[0].Flags["fk_product_orphan"])
}

func TestClassifyDeliverySequence(t *testing.T) {
	classifier := NewClassifier(NewCatalog())

	records := []*models.Record{
		testutil.NewDeliveryRecord("D1", "O1"),
		testutil.NewDeliveryRecord("D2", "O2",
			testutil.WithField("ship_date", "2024-03-14")), // 发货早于下单
		testutil.NewDeliveryRecord("D3", "O3",
			testutil.WithField("delivery_date", "2024-03-15")), // 送达早于发货
	}
	annotated, err := classifier.Classify(models.EntityDelivery, records, nil)

	assert.NoError(t, err)
	assert.False(t, annotated[0].Flags["delivery_sequence_violation"])
	assert.True(t, annotated[1].Flags["delivery_sequence_violation"])
	assert.True(t, annotated[2].Flags["delivery_sequence_violation"])
}

func TestClassifyEmptyBatch(t *testing.T) {
	classifier := NewClassifier(NewCatalog())

	annotated, err := classifier.Classify(models.EntityCustomer, nil, nil)

	assert.NoError(t, err)
	assert.Empty(t, annotated)
}

func TestClassifyStructurallyCorruptBatch(t *testing.T) {
	classifier := NewClassifier(NewCatalog())

	// 非空批次中没有任何记录携带主键字段，视为结构损坏
	records := []*models.Record{
		models.NewRecord(map[string]interface{}{"foo": "bar"}),
		models.NewRecord(map[string]interface{}{"baz": 1}),
	}
	_, err := classifier.Classify(models.EntityCustomer, records, nil)

	assert.Error(t, err)
}

func TestPartitionSeparatesGoldAndIssues(t *testing.T) {
	classifier := NewClassifier(NewCatalog())

	records := []*models.Record{
		testutil.NewCustomerRecord("C1"),
		testutil.NewCustomerRecord("C2", testutil.WithField("email", nil)),
		testutil.NewCustomerRecord("C3"),
	}
	annotated, err := classifier.Classify(models.EntityCustomer, records, nil)
	assert.NoError(t, err)

	gold, issues := Partition(annotated)

	assert.Len(t, gold, 2)
	assert.Len(t, issues, 1)

	// 金表记录剥离标记，问题表记录保留完整标记向量供审计
	for _, r := range gold {
		assert.Empty(t, r.Flags)
		assert.False(t, r.HasIssue)
	}
	assert.True(t, issues[0].Flags["missing_email"])
	assert.Equal(t, "C2", issues[0].Key(models.EntityCustomer))
}

func TestClassifyIsIdempotent(t *testing.T) {
	classifier := NewClassifier(NewCatalog())

	build := func() []*models.Record {
		return []*models.Record{
			testutil.NewCustomerRecord("C1"),
			testutil.NewCustomerRecord("C1"),
			testutil.NewCustomerRecord("C2", testutil.WithField("state", "XX")),
		}
	}

	first, err := classifier.Classify(models.EntityCustomer, build(), nil)
	assert.NoError(t, err)
	second, err := classifier.Classify(models.EntityCustomer, build(), nil)
	assert.NoError(t, err)

	for i := range first {
		assert.Equal(t, first[i].Flags, second[i].Flags)
		assert.Equal(t, first[i].HasIssue, second[i].HasIssue)
	}
}
