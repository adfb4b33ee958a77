/*
 * @module service/datasource/interface
 * @description 记录数据源统一接口定义，屏蔽文件、Kafka、MQTT等暂存来源的差异
 * @architecture 适配器模式 - 各数据源实现统一的拉取契约
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow 刷新开始 -> 按实体拉取记录 -> 交给分类器
 * @rules 数据源只负责拉取和解析，不做任何质量判断；实体无数据时返回空切片而非错误
 * @dependencies dataquality-service/service/models, context
 * @refs csv_file.go, kafka.go, mqtt.go
 */

package datasource

import (
	"context"

	"dataquality-service/service/models"
)

// RecordSource 记录数据源接口
type RecordSource interface {
	// Name 数据源类型名称
	Name() string
	// Fetch 拉取指定实体的暂存记录，实体无数据时返回空切片
	Fetch(ctx context.Context, entity models.EntityType) ([]*models.Record, error)
}

// Registry 按实体类型选择数据源
// 未单独配置的实体使用默认数据源
type Registry struct {
	defaultSource RecordSource
	overrides     map[models.EntityType]RecordSource
}

// NewRegistry 创建数据源注册表
func NewRegistry(defaultSource RecordSource) *Registry {
	return &Registry{
		defaultSource: defaultSource,
		overrides:     make(map[models.EntityType]RecordSource),
	}
}

// Override 为指定实体设置专属数据源
func (r *Registry) Override(entity models.EntityType, source RecordSource) {
	r.overrides[entity] = source
}

// SourceFor 返回实体对应的数据源
func (r *Registry) SourceFor(entity models.EntityType) RecordSource {
	if source, ok := r.overrides[entity]; ok {
		return source
	}
	return r.defaultSource
}
