/*
 * @module service/models/quality_models
 * @description 数据质量输出表模型定义，包括金表记录、问题表记录、对账记录、日指标和质量评分
 * @architecture 分层架构 - 数据模型层
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow 刷新批次创建 -> 输出行写入 -> 批次指针切换
 * @rules 输出表名对外固定不可变更，所有输出行携带批次ID
 * @dependencies gorm.io/gorm, github.com/google/uuid
 * @refs service/pipeline, service/database
 */

package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// goldTableNames 金表表名，对外固定
var goldTableNames = map[EntityType]string{
	EntityCustomer:  "dim_customers_gold",
	EntityProduct:   "dim_products_gold",
	EntityOrder:     "fact_orders_gold",
	EntityOrderItem: "fact_order_items_gold",
	EntityPayment:   "fact_payments_gold",
	EntityDelivery:  "fact_deliveries_gold",
}

// GoldTableName 返回实体金表表名
func GoldTableName(entity EntityType) string {
	return goldTableNames[entity]
}

// IssueTableName 返回实体问题表表名
func IssueTableName(entity EntityType) string {
	return fmt.Sprintf("dq_%s_issues", entity)
}

// GoldRow 金表行，字段以JSONB形式保存，不含审计标记
type GoldRow struct {
	ID         string    `gorm:"type:uuid;primary_key" json:"id"`
	BatchID    string    `gorm:"not null;index" json:"batch_id"`
	EntityType string    `gorm:"not null" json:"entity_type"`
	RecordKey  string    `gorm:"not null;index" json:"record_key"`
	Fields     JSONB     `gorm:"type:jsonb;not null" json:"fields"`
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// BeforeCreate 创建前钩子
func (g *GoldRow) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	return nil
}

// IssueRow 问题表行，保留全部规则标记用于审计
type IssueRow struct {
	ID         string    `gorm:"type:uuid;primary_key" json:"id"`
	BatchID    string    `gorm:"not null;index" json:"batch_id"`
	EntityType string    `gorm:"not null" json:"entity_type"`
	RecordKey  string    `gorm:"index" json:"record_key"`
	Fields     JSONB     `gorm:"type:jsonb;not null" json:"fields"`
	Flags      JSONB     `gorm:"type:jsonb;not null" json:"flags"`
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// BeforeCreate 创建前钩子
func (i *IssueRow) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	return nil
}

// ReconRecord 订单对账记录
type ReconRecord struct {
	ID                 string    `gorm:"type:uuid;primary_key" json:"id"`
	BatchID            string    `gorm:"not null;index" json:"batch_id"`
	OrderID            string    `gorm:"not null;index" json:"order_id"`
	ItemsTotal         float64   `gorm:"not null" json:"items_total"`
	PaymentsTotal      float64   `gorm:"not null" json:"payments_total"`
	Delta              float64   `gorm:"not null" json:"delta"`
	StatusMismatchFlag bool      `gorm:"not null" json:"status_mismatch_flag"`
	CreatedAt          time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName 指定表名
func (ReconRecord) TableName() string {
	return "fact_order_recon"
}

// BeforeCreate 创建前钩子
func (r *ReconRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// DailyMetric 日指标记录，含滚动统计和异常标记
type DailyMetric struct {
	ID             string    `gorm:"type:uuid;primary_key" json:"id"`
	BatchID        string    `gorm:"not null;index" json:"batch_id"`
	MetricDate     time.Time `gorm:"not null;index" json:"metric_date"`
	MetricName     string    `gorm:"not null;index" json:"metric_name"`
	Value          float64   `gorm:"not null" json:"value"`
	RollingMean    float64   `json:"rolling_mean_14d"`
	RollingStddev  float64   `json:"rolling_stddev_14d"`
	WindowComplete bool      `gorm:"not null" json:"window_complete"`
	AnomalyFlag    bool      `gorm:"not null" json:"anomaly_flag"`
	CreatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName 指定表名
func (DailyMetric) TableName() string {
	return "daily_metrics_enriched"
}

// BeforeCreate 创建前钩子
func (d *DailyMetric) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	return nil
}

// DQScore 实体级质量评分记录
type DQScore struct {
	ID         string    `gorm:"type:uuid;primary_key" json:"id"`
	BatchID    string    `gorm:"not null;index" json:"batch_id"`
	EntityType string    `gorm:"not null" json:"entity_type"`
	GoldCount  int64     `gorm:"not null" json:"gold_count"`
	IssueCount int64     `gorm:"not null" json:"issue_count"`
	IssueRate  float64   `gorm:"not null" json:"issue_rate"`
	Score      float64   `gorm:"not null" json:"dq_score"`
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName 指定表名
func (DQScore) TableName() string {
	return "dq_scores"
}

// BeforeCreate 创建前钩子
func (s *DQScore) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

// 刷新批次状态
const (
	BatchStatusRunning = "running"
	BatchStatusSuccess = "success"
	BatchStatusPartial = "partial"
	BatchStatusFailed  = "failed"
)

// RefreshBatch 刷新批次记录
type RefreshBatch struct {
	ID            string     `gorm:"type:uuid;primary_key" json:"id"`
	Status        string     `gorm:"not null" json:"status"` // running/success/partial/failed
	StartedAt     time.Time  `gorm:"not null" json:"started_at"`
	FinishedAt    *time.Time `json:"finished_at"`
	EntityResults JSONB      `gorm:"type:jsonb" json:"entity_results"`
	ErrorMessage  *string    `json:"error_message"`
	CreatedAt     time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName 指定表名
func (RefreshBatch) TableName() string {
	return "refresh_batches"
}

// BeforeCreate 创建前钩子
func (b *RefreshBatch) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return nil
}

// RefreshPointer 当前批次指针，单行表，批次切换时在事务内原子更新
type RefreshPointer struct {
	ID             int       `gorm:"primary_key" json:"id"`
	CurrentBatchID string    `gorm:"not null" json:"current_batch_id"`
	UpdatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName 指定表名
func (RefreshPointer) TableName() string {
	return "refresh_pointer"
}
