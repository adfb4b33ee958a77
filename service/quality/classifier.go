/*
 * @module service/quality/classifier
 * @description 记录分类器，对单一实体类型的记录流逐条应用规则目录并产出标记向量
 * @architecture 分层架构 - 数据质量服务层
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow 批次预检 -> 逐记录规则评估 -> 标记注解 -> has_issue计算
 * @rules 分类过程确定性、无外部IO；规则评估缺口按违规标记而非中断；仅批次级结构损坏返回错误
 * @dependencies dataquality-service/service/models
 * @refs catalog.go, context.go, partitioner.go
 */

package quality

import (
	"fmt"
	"log/slog"

	"dataquality-service/service/models"
)

// Classifier 记录分类器
type Classifier struct {
	catalog *Catalog
}

// NewClassifier 创建分类器
func NewClassifier(catalog *Catalog) *Classifier {
	return &Classifier{catalog: catalog}
}

// Classify 对实体记录流应用规则目录，返回注解后的记录
// 上下文缺失的规则按违规处理；仅当非空批次中没有任何记录携带主键字段时返回错误，
// 该错误只中止当前实体的分类，不影响其他实体
func (c *Classifier) Classify(entity models.EntityType, records []*models.Record, ctx *Context) ([]*models.Record, error) {
	if err := c.checkBatchReadable(entity, records); err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = NewContext()
	}
	if len(ctx.DuplicateKeys) == 0 {
		ctx.DuplicateKeys = CollectDuplicateKeys(entity, records)
	}

	rules := c.catalog.RulesFor(entity)
	for _, record := range records {
		for _, rule := range rules {
			record.SetFlag(rule.Name(), rule.Evaluate(record, ctx))
		}
	}

	slog.Debug("实体分类完成", "entity", entity, "records", len(records), "rules", len(rules))
	return records, nil
}

// checkBatchReadable 批次结构预检：非空批次中必须至少有一条记录携带主键字段
func (c *Classifier) checkBatchReadable(entity models.EntityType, records []*models.Record) error {
	if len(records) == 0 {
		return nil
	}
	keyField := models.KeyField(entity)
	for _, r := range records {
		if r.HasField(keyField) {
			return nil
		}
	}
	return fmt.Errorf("实体 %s 的批次结构不可读: 没有任何记录携带主键字段 %s", entity, keyField)
}
