/*
 * @module service/quality/score
 * @description 评分聚合器，根据金表和问题表数量计算实体级问题率和综合质量评分
 * @architecture 分层架构 - 数据质量服务层
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow 分区计数输入 -> 问题率计算 -> 质量评分输出
 * @rules 纯函数无IO；分母为0时问题率取0，不产生除零错误
 * @dependencies dataquality-service/service/models
 * @refs partitioner.go, service/pipeline
 */

package quality

import (
	"dataquality-service/service/models"
)

// ScoreResult 实体级质量评分结果
type ScoreResult struct {
	EntityType models.EntityType `json:"entity_type"`
	GoldCount  int64             `json:"gold_count"`
	IssueCount int64             `json:"issue_count"`
	IssueRate  float64           `json:"issue_rate"`
	DQScore    float64           `json:"dq_score"`
}

// Score 计算实体级问题率和质量评分
// issueRate = issueCount / (goldCount + issueCount)；dqScore = 1 - issueRate；
// 总数为0时问题率和评分都取0
func Score(entity models.EntityType, goldCount, issueCount int64) ScoreResult {
	result := ScoreResult{
		EntityType: entity,
		GoldCount:  goldCount,
		IssueCount: issueCount,
	}
	total := goldCount + issueCount
	if total == 0 {
		return result
	}
	result.IssueRate = float64(issueCount) / float64(total)
	result.DQScore = 1 - result.IssueRate
	return result
}
