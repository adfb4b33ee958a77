/*
 * @module service/quality/partitioner
 * @description 分区器，将分类后的记录切分为金表集合与问题集合
 * @architecture 分层架构 - 数据质量服务层
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow 分类记录输入 -> 按has_issue切分 -> 金表剥离标记/问题表保留标记
 * @rules 每条输入记录恰好落入一个集合，|gold|+|issues|=|input|；保持输入相对顺序
 * @dependencies dataquality-service/service/models
 * @refs classifier.go, service/pipeline
 */

package quality

import (
	"dataquality-service/service/models"
)

// Partition 将分类后的记录切分为金表集合与问题集合
// 金表记录剥离审计标记字段，问题记录保留全部标记
func Partition(records []*models.Record) (gold []*models.Record, issues []*models.Record) {
	gold = make([]*models.Record, 0, len(records))
	issues = make([]*models.Record, 0)
	for _, r := range records {
		if r.HasIssue {
			issues = append(issues, r)
		} else {
			gold = append(gold, r.CloneWithoutFlags())
		}
	}
	return gold, issues
}
