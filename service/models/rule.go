/*
 * @module service/models/rule
 * @description 验证规则的类别定义，供规则目录和评分聚合按类别分组
 * @architecture 分层架构 - 数据模型层
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow 规则注册 -> 分类执行 -> 按类别统计
 * @rules 规则类别为固定枚举，新增规则必须声明所属类别
 * @dependencies 无
 * @refs service/quality/catalog.go
 */

package models

// RuleKind 规则类别
type RuleKind string

const (
	RuleKindCompleteness RuleKind = "completeness"
	RuleKindDomain       RuleKind = "domain"
	RuleKindUniqueness   RuleKind = "uniqueness"
	RuleKindReferential  RuleKind = "referential"
	RuleKindTemporal     RuleKind = "temporal"
	RuleKindRange        RuleKind = "range"
)
