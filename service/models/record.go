/*
 * @module service/models/record
 * @description 实体记录模型定义，包括实体类型、记录结构和质量标记
 * @architecture 分层架构 - 数据模型层
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow 记录摄取 -> 规则分类 -> 标记注解 -> 金表/问题表分区
 * @rules 记录的标记集合与has_issue派生值保持一致，has_issue为所有标记的逻辑或
 * @dependencies github.com/spf13/cast
 * @refs service/quality, service/datasource
 */

package models

import (
	"strings"
	"time"

	"github.com/spf13/cast"
)

// EntityType 实体类型
type EntityType string

const (
	EntityCustomer  EntityType = "customers"
	EntityProduct   EntityType = "products"
	EntityOrder     EntityType = "orders"
	EntityOrderItem EntityType = "order_items"
	EntityPayment   EntityType = "payments"
	EntityDelivery  EntityType = "deliveries"
)

// AllEntityTypes 所有实体类型，按参照依赖顺序排列
var AllEntityTypes = []EntityType{
	EntityCustomer,
	EntityProduct,
	EntityOrder,
	EntityOrderItem,
	EntityPayment,
	EntityDelivery,
}

// entityKeyFields 各实体的主键字段
var entityKeyFields = map[EntityType]string{
	EntityCustomer:  "customer_id",
	EntityProduct:   "product_id",
	EntityOrder:     "order_id",
	EntityOrderItem: "order_item_id",
	EntityPayment:   "payment_id",
	EntityDelivery:  "delivery_id",
}

// KeyField 返回实体的主键字段名
func KeyField(entity EntityType) string {
	return entityKeyFields[entity]
}

// ParseEntityType 解析实体类型字符串，第二个返回值表示是否合法
func ParseEntityType(s string) (EntityType, bool) {
	entity := EntityType(strings.ToLower(strings.TrimSpace(s)))
	_, ok := entityKeyFields[entity]
	return entity, ok
}

// Record 通用实体记录
// Fields保存字段名到取值的映射，Flags保存规则标记，HasIssue为所有标记的逻辑或
type Record struct {
	Fields   map[string]interface{} `json:"fields"`
	Flags    map[string]bool        `json:"flags,omitempty"`
	HasIssue bool                   `json:"has_issue"`
}

// NewRecord 创建记录
func NewRecord(fields map[string]interface{}) *Record {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	return &Record{Fields: fields, Flags: make(map[string]bool)}
}

// SetFlag 设置规则标记并同步has_issue
func (r *Record) SetFlag(name string, violated bool) {
	if r.Flags == nil {
		r.Flags = make(map[string]bool)
	}
	r.Flags[name] = violated
	if violated {
		r.HasIssue = true
	}
}

// Key 返回记录的主键取值，缺失或为空时返回空字符串
func (r *Record) Key(entity EntityType) string {
	return strings.TrimSpace(r.StringField(KeyField(entity)))
}

// HasField 判断字段是否存在且非nil
func (r *Record) HasField(name string) bool {
	v, ok := r.Fields[name]
	return ok && v != nil
}

// StringField 以字符串形式读取字段，缺失时返回空字符串
func (r *Record) StringField(name string) string {
	v, ok := r.Fields[name]
	if !ok || v == nil {
		return ""
	}
	return cast.ToString(v)
}

// FloatField 以浮点数形式读取字段，返回取值和是否可解析
func (r *Record) FloatField(name string) (float64, bool) {
	v, ok := r.Fields[name]
	if !ok || v == nil {
		return 0, false
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, false
	}
	return f, true
}

// TimeField 以时间形式读取字段，返回取值和是否可解析
func (r *Record) TimeField(name string) (time.Time, bool) {
	v, ok := r.Fields[name]
	if !ok || v == nil {
		return time.Time{}, false
	}
	if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
		return time.Time{}, false
	}
	t, err := cast.ToTimeE(v)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// CloneWithoutFlags 复制记录并剥离审计标记，用于金表输出
func (r *Record) CloneWithoutFlags() *Record {
	fields := make(map[string]interface{}, len(r.Fields))
	for k, v := range r.Fields {
		fields[k] = v
	}
	return &Record{Fields: fields}
}
