/*
 * @module service/quality/score_test
 * @description 质量评分计算测试
 * @architecture 测试层
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow 分区计数输入 -> 评分计算 -> 结果验证
 * @rules 问题率=问题数/总数，评分=1-问题率，空实体评分为0
 * @dependencies testing, github.com/stretchr/testify/assert
 * @refs score.go
 */

package quality

import (
	"testing"

	"dataquality-service/service/models"

	"github.com/stretchr/testify/assert"
)

func TestScoreBasic(t *testing.T) {
	result := Score(models.EntityCustomer, 95, 5)

	assert.Equal(t, models.EntityCustomer, result.EntityType)
	assert.Equal(t, int64(95), result.GoldCount)
	assert.Equal(t, int64(5), result.IssueCount)
	assert.InDelta(t, 0.05, result.IssueRate, 1e-9)
	assert.InDelta(t, 0.95, result.DQScore, 1e-9)
}

func TestScoreEmptyEntity(t *testing.T) {
	// 总数为0时不除零，问题率和评分都为0
	result := Score(models.EntityProduct, 0, 0)

	assert.Equal(t, float64(0), result.IssueRate)
	assert.Equal(t, float64(0), result.DQScore)
}

func TestScoreAllIssues(t *testing.T) {
	result := Score(models.EntityOrder, 0, 10)

	assert.InDelta(t, 1.0, result.IssueRate, 1e-9)
	assert.InDelta(t, 0.0, result.DQScore, 1e-9)
}

func TestCatalogFlagKinds(t *testing.T) {
	catalog := NewCatalog()

	kinds := catalog.FlagKinds(models.EntityOrderItem)
	assert.Equal(t, models.RuleKindCompleteness, kinds["missing_order_item_id"])
	assert.Equal(t, models.RuleKindUniqueness, kinds["dup_order_item_id"])
	assert.Equal(t, models.RuleKindRange, kinds["bad_quantity"])
	assert.Equal(t, models.RuleKindRange, kinds["bad_unit_price"])
	assert.Equal(t, models.RuleKindReferential, kinds["fk_product_orphan"])

	// 每个实体都带主键完整性和唯一性检查
	for _, entity := range models.AllEntityTypes {
		keyField := models.KeyField(entity)
		entityKinds := catalog.FlagKinds(entity)
		assert.Contains(t, entityKinds, "missing_"+keyField)
		assert.Contains(t, entityKinds, "dup_"+keyField)
	}
}
