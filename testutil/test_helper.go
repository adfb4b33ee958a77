/*
 * @module testutil/test_helper
 * @description 测试工具和辅助函数
 * @architecture 测试基础设施 - 提供测试数据库和记录工厂
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow 测试环境初始化 -> 测试数据创建 -> 测试执行 -> 清理资源
 * @rules 提供可重用的测试工具，确保测试环境的一致性
 * @dependencies gorm, sqlite, time
 * @refs service/models
 */

package testutil

import (
	"fmt"

	"dataquality-service/service/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB 测试数据库配置
type TestDB struct {
	DB *gorm.DB
}

// NewTestDB 创建测试数据库并迁移全部输出表
func NewTestDB() *TestDB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic(fmt.Sprintf("failed to connect test database: %v", err))
	}

	// 每个实体迁移金表和问题表
	for _, entity := range models.AllEntityTypes {
		if err := db.Table(models.GoldTableName(entity)).AutoMigrate(&models.GoldRow{}); err != nil {
			panic(fmt.Sprintf("failed to migrate gold table for %s: %v", entity, err))
		}
		if err := db.Table(models.IssueTableName(entity)).AutoMigrate(&models.IssueRow{}); err != nil {
			panic(fmt.Sprintf("failed to migrate issue table for %s: %v", entity, err))
		}
	}

	err = db.AutoMigrate(
		&models.ReconRecord{},
		&models.DailyMetric{},
		&models.DQScore{},
		&models.RefreshBatch{},
		&models.RefreshPointer{},
	)
	if err != nil {
		panic(fmt.Sprintf("failed to migrate test database: %v", err))
	}

	return &TestDB{DB: db}
}

// CleanDB 清理数据库
func (tdb *TestDB) CleanDB() {
	var tables []string
	for _, entity := range models.AllEntityTypes {
		tables = append(tables, models.GoldTableName(entity), models.IssueTableName(entity))
	}
	tables = append(tables,
		"fact_order_recon",
		"daily_metrics_enriched",
		"dq_scores",
		"refresh_batches",
		"refresh_pointer",
	)

	for _, table := range tables {
		tdb.DB.Exec(fmt.Sprintf("DELETE FROM %s", table))
	}
}

// Close 关闭数据库连接
func (tdb *TestDB) Close() {
	if db, err := tdb.DB.DB(); err == nil {
		db.Close()
	}
}

// RecordOption 记录字段覆盖选项
type RecordOption func(map[string]interface{})

// WithField 覆盖单个字段取值，nil表示字段缺失
func WithField(name string, value interface{}) RecordOption {
	return func(fields map[string]interface{}) {
		fields[name] = value
	}
}

// NewCustomerRecord 创建有效的客户暂存记录
func NewCustomerRecord(id string, opts ...RecordOption) *models.Record {
	fields := map[string]interface{}{
		"customer_id": id,
		"email":       id + "@example.com",
		"state":       "CA",
		"signup_date": "2024-01-01",
	}
	return buildRecord(fields, opts)
}

// NewProductRecord 创建有效的商品暂存记录
func NewProductRecord(id string, opts ...RecordOption) *models.Record {
	fields := map[string]interface{}{
		"product_id": id,
		"name":       "商品" + id,
		"category":   "electronics",
	}
	return buildRecord(fields, opts)
}

// NewOrderRecord 创建有效的订单暂存记录
func NewOrderRecord(id, customerID string, opts ...RecordOption) *models.Record {
	fields := map[string]interface{}{
		"order_id":       id,
		"customer_id":    customerID,
		"order_datetime": "2024-03-15T10:30:00Z",
		"status":         "completed",
	}
	return buildRecord(fields, opts)
}

// NewOrderItemRecord 创建有效的订单明细暂存记录
func NewOrderItemRecord(id, orderID, productID string, opts ...RecordOption) *models.Record {
	fields := map[string]interface{}{
		"order_item_id": id,
		"order_id":      orderID,
		"product_id":    productID,
		"quantity":      2,
		"unit_price":    19.99,
	}
	return buildRecord(fields, opts)
}

// NewPaymentRecord 创建有效的支付暂存记录
func NewPaymentRecord(id, orderID string, amount float64, opts ...RecordOption) *models.Record {
	fields := map[string]interface{}{
		"payment_id":       id,
		"order_id":         orderID,
		"amount":           amount,
		"status":           "captured",
		"payment_datetime": "2024-03-15T10:35:00Z",
	}
	return buildRecord(fields, opts)
}

// NewDeliveryRecord 创建有效的物流暂存记录
func NewDeliveryRecord(id, orderID string, opts ...RecordOption) *models.Record {
	fields := map[string]interface{}{
		"delivery_id":   id,
		"order_id":      orderID,
		"order_date":    "2024-03-15",
		"ship_date":     "2024-03-16",
		"delivery_date": "2024-03-18",
	}
	return buildRecord(fields, opts)
}

func buildRecord(fields map[string]interface{}, opts []RecordOption) *models.Record {
	for _, opt := range opts {
		opt(fields)
	}
	return models.NewRecord(fields)
}
