/*
 * @module service/quality/context
 * @description 规则执行上下文，为唯一性、参照完整性和时序规则提供跨记录的只读快照数据
 * @architecture 分层架构 - 数据质量服务层
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow 上下文构建 -> 规则评估 -> 丢弃（每次刷新重建）
 * @rules 上下文在一次刷新周期内为只读快照，规则不得修改上下文
 * @dependencies dataquality-service/service/models
 * @refs catalog.go, classifier.go, service/pipeline
 */

package quality

import (
	"dataquality-service/service/models"
)

// Context 规则执行上下文
// KeySets保存被参照实体的金表主键集合，DuplicateKeys保存当前批次内出现多次的主键，
// FieldIndex按实体和主键索引跨记录字段值（如客户注册日期）
type Context struct {
	KeySets       map[models.EntityType]map[string]bool
	DuplicateKeys map[string]bool
	FieldIndex    map[models.EntityType]map[string]map[string]interface{}
}

// NewContext 创建空上下文
func NewContext() *Context {
	return &Context{
		KeySets:       make(map[models.EntityType]map[string]bool),
		DuplicateKeys: make(map[string]bool),
		FieldIndex:    make(map[models.EntityType]map[string]map[string]interface{}),
	}
}

// SetKeySet 注册被参照实体的主键集合
func (c *Context) SetKeySet(entity models.EntityType, keys map[string]bool) {
	c.KeySets[entity] = keys
}

// KeySet 获取被参照实体的主键集合，第二个返回值表示集合是否已提供
func (c *Context) KeySet(entity models.EntityType) (map[string]bool, bool) {
	keys, ok := c.KeySets[entity]
	return keys, ok
}

// IndexField 按主键索引某实体的字段值，供时序规则查询
func (c *Context) IndexField(entity models.EntityType, key, field string, value interface{}) {
	byKey, ok := c.FieldIndex[entity]
	if !ok {
		byKey = make(map[string]map[string]interface{})
		c.FieldIndex[entity] = byKey
	}
	fields, ok := byKey[key]
	if !ok {
		fields = make(map[string]interface{})
		byKey[key] = fields
	}
	fields[field] = value
}

// LookupField 查询被参照实体指定主键的字段值
func (c *Context) LookupField(entity models.EntityType, key, field string) (interface{}, bool) {
	byKey, ok := c.FieldIndex[entity]
	if !ok {
		return nil, false
	}
	fields, ok := byKey[key]
	if !ok {
		return nil, false
	}
	v, ok := fields[field]
	return v, ok
}

// CollectKeySet 从记录集合提取主键集合
func CollectKeySet(entity models.EntityType, records []*models.Record) map[string]bool {
	keys := make(map[string]bool, len(records))
	for _, r := range records {
		if key := r.Key(entity); key != "" {
			keys[key] = true
		}
	}
	return keys
}

// CollectDuplicateKeys 统计当前批次内出现多次的主键
// 重复主键的所有记录都会被唯一性规则标记
func CollectDuplicateKeys(entity models.EntityType, records []*models.Record) map[string]bool {
	counts := make(map[string]int, len(records))
	for _, r := range records {
		if key := r.Key(entity); key != "" {
			counts[key]++
		}
	}
	dups := make(map[string]bool)
	for key, n := range counts {
		if n > 1 {
			dups[key] = true
		}
	}
	return dups
}
