/*
 * @module service/database/migrate
 * @description 数据库迁移模块，负责创建和更新输出表结构
 * @architecture 数据访问层 - 迁移管理
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow 应用启动时执行数据库迁移
 * @rules 金表和问题表按实体使用固定表名，表名对外不可变更
 * @dependencies dataquality-service/service/models, gorm.io/gorm
 * @refs service/init.go
 */

package database

import (
	"log"

	"dataquality-service/service/models"

	"gorm.io/gorm"
)

// AutoMigrate 自动迁移数据库表结构
func AutoMigrate(db *gorm.DB) error {
	log.Println("开始数据库迁移...")

	// 每个实体一张金表和一张问题表，表名固定
	for _, entity := range models.AllEntityTypes {
		if err := db.Table(models.GoldTableName(entity)).AutoMigrate(&models.GoldRow{}); err != nil {
			return err
		}
		if err := db.Table(models.IssueTableName(entity)).AutoMigrate(&models.IssueRow{}); err != nil {
			return err
		}
	}

	// 对账、日指标、评分和批次管理表
	err := db.AutoMigrate(
		&models.ReconRecord{},
		&models.DailyMetric{},
		&models.DQScore{},
		&models.RefreshBatch{},
		&models.RefreshPointer{},
	)
	if err != nil {
		return err
	}

	log.Println("数据库迁移完成")
	return nil
}
