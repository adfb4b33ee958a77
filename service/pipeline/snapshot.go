/*
 * @module service/pipeline/snapshot
 * @description 刷新快照，汇集一次刷新的全部输出并在单事务内原子落库
 * @architecture 双缓冲模式 - 先在内存构建完整快照，再一次性替换输出表内容
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow 分区结果汇集 -> 对账/指标/评分汇集 -> 单事务写入 -> 批次指针切换
 * @rules 读取方永远不会观察到半写状态；分类失败的实体及依赖它的派生表保留上一批次数据不被清除
 * @dependencies dataquality-service/service/models, gorm.io/gorm, sync
 * @refs pipeline.go, service/database/migrate.go
 */

package pipeline

import (
	"fmt"
	"sync"
	"time"

	"dataquality-service/service/models"
	"dataquality-service/service/quality"

	"gorm.io/gorm"
)

// entityOutcome 单实体的分类产出
type entityOutcome struct {
	gold   []*models.Record
	issues []*models.Record
	err    error
}

// Snapshot 一次刷新的输出快照
type Snapshot struct {
	BatchID string

	mu       sync.Mutex
	outcomes map[models.EntityType]*entityOutcome

	Recon      []models.ReconRecord
	ReconReady bool

	Metrics []models.DailyMetric
	// MetricNames 本次重建的日指标序列名，输入实体失败的序列不在其中
	MetricNames []string

	Scores []quality.ScoreResult
}

// NewSnapshot 创建空快照
func NewSnapshot(batchID string) *Snapshot {
	return &Snapshot{
		BatchID:  batchID,
		outcomes: make(map[models.EntityType]*entityOutcome),
	}
}

// SetPartition 记录实体的分区结果
func (s *Snapshot) SetPartition(entity models.EntityType, gold, issues []*models.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcomes[entity] = &entityOutcome{gold: gold, issues: issues}
}

// FailEntity 记录实体级失败，该实体本次刷新不产出数据
func (s *Snapshot) FailEntity(entity models.EntityType, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcomes[entity] = &entityOutcome{err: err}
}

// Gold 返回实体的金表记录，失败或未处理的实体返回空切片
func (s *Snapshot) Gold(entity models.EntityType) []*models.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	if outcome, ok := s.outcomes[entity]; ok && outcome.err == nil {
		return outcome.gold
	}
	return nil
}

// Failed 判断实体是否分类失败
func (s *Snapshot) Failed(entity models.EntityType) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	outcome, ok := s.outcomes[entity]
	return ok && outcome.err != nil
}

// Status 根据实体结果推导批次状态
func (s *Snapshot) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	failed := 0
	for _, outcome := range s.outcomes {
		if outcome.err != nil {
			failed++
		}
	}
	switch {
	case failed == 0:
		return models.BatchStatusSuccess
	case failed < len(s.outcomes):
		return models.BatchStatusPartial
	default:
		return models.BatchStatusFailed
	}
}

// EntityResults 生成批次记录的实体结果明细
func (s *Snapshot) EntityResults() models.JSONB {
	s.mu.Lock()
	defer s.mu.Unlock()
	results := make(models.JSONB, len(s.outcomes))
	for entity, outcome := range s.outcomes {
		if outcome.err != nil {
			results[string(entity)] = map[string]interface{}{
				"status": "failed",
				"error":  outcome.err.Error(),
			}
			continue
		}
		results[string(entity)] = map[string]interface{}{
			"status":      "success",
			"gold_count":  len(outcome.gold),
			"issue_count": len(outcome.issues),
		}
	}
	return results
}

// Persist 在单事务内落库：替换成功实体的金表/问题表内容，重建输入完整的对账表和
// 日指标序列，追加评分，更新批次记录并切换当前批次指针。
// 失败实体的金表/问题表以及依赖它的派生表保留上一批次数据
func (s *Snapshot) Persist(db *gorm.DB) error {
	now := time.Now()
	return db.Transaction(func(tx *gorm.DB) error {
		for _, entity := range models.AllEntityTypes {
			s.mu.Lock()
			outcome, ok := s.outcomes[entity]
			s.mu.Unlock()
			if !ok || outcome.err != nil {
				// 失败实体保留上一批次数据
				continue
			}
			if err := s.persistEntity(tx, entity, outcome); err != nil {
				return err
			}
		}

		// 对账表仅在两个输入实体都成功时重建，否则保留上一批次结果
		if s.ReconReady {
			if err := tx.Where("batch_id <> ?", s.BatchID).Delete(&models.ReconRecord{}).Error; err != nil {
				return fmt.Errorf("清理对账表失败: %w", err)
			}
			for i := range s.Recon {
				s.Recon[i].BatchID = s.BatchID
			}
			if len(s.Recon) > 0 {
				if err := tx.CreateInBatches(s.Recon, 500).Error; err != nil {
					return fmt.Errorf("写入对账表失败: %w", err)
				}
			}
		}

		// 日指标表按序列重建，输入实体失败的序列保留上一批次
		for _, name := range s.MetricNames {
			if err := tx.Where("metric_name = ? AND batch_id <> ?", name, s.BatchID).
				Delete(&models.DailyMetric{}).Error; err != nil {
				return fmt.Errorf("清理日指标表失败: %w", err)
			}
		}
		for i := range s.Metrics {
			s.Metrics[i].BatchID = s.BatchID
		}
		if len(s.Metrics) > 0 {
			if err := tx.CreateInBatches(s.Metrics, 500).Error; err != nil {
				return fmt.Errorf("写入日指标表失败: %w", err)
			}
		}

		// 评分按批次追加，保留历史趋势
		for _, score := range s.Scores {
			row := models.DQScore{
				BatchID:    s.BatchID,
				EntityType: string(score.EntityType),
				GoldCount:  score.GoldCount,
				IssueCount: score.IssueCount,
				IssueRate:  score.IssueRate,
				Score:      score.DQScore,
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("写入评分失败: %w", err)
			}
		}

		// 切换当前批次指针
		pointer := models.RefreshPointer{ID: 1, CurrentBatchID: s.BatchID, UpdatedAt: now}
		if err := tx.Save(&pointer).Error; err != nil {
			return fmt.Errorf("切换批次指针失败: %w", err)
		}
		return nil
	})
}

// persistEntity 替换单实体的金表和问题表内容
func (s *Snapshot) persistEntity(tx *gorm.DB, entity models.EntityType, outcome *entityOutcome) error {
	goldTable := models.GoldTableName(entity)
	issueTable := models.IssueTableName(entity)

	if err := tx.Table(goldTable).Where("batch_id <> ?", s.BatchID).Delete(&models.GoldRow{}).Error; err != nil {
		return fmt.Errorf("清理金表 %s 失败: %w", goldTable, err)
	}
	goldRows := make([]models.GoldRow, 0, len(outcome.gold))
	for _, record := range outcome.gold {
		goldRows = append(goldRows, models.GoldRow{
			BatchID:    s.BatchID,
			EntityType: string(entity),
			RecordKey:  record.Key(entity),
			Fields:     models.JSONB(record.Fields),
		})
	}
	if len(goldRows) > 0 {
		if err := tx.Table(goldTable).CreateInBatches(goldRows, 500).Error; err != nil {
			return fmt.Errorf("写入金表 %s 失败: %w", goldTable, err)
		}
	}

	if err := tx.Table(issueTable).Where("batch_id <> ?", s.BatchID).Delete(&models.IssueRow{}).Error; err != nil {
		return fmt.Errorf("清理问题表 %s 失败: %w", issueTable, err)
	}
	issueRows := make([]models.IssueRow, 0, len(outcome.issues))
	for _, record := range outcome.issues {
		flags := make(models.JSONB, len(record.Flags))
		for name, violated := range record.Flags {
			flags[name] = violated
		}
		issueRows = append(issueRows, models.IssueRow{
			BatchID:    s.BatchID,
			EntityType: string(entity),
			RecordKey:  record.Key(entity),
			Fields:     models.JSONB(record.Fields),
			Flags:      flags,
		})
	}
	if len(issueRows) > 0 {
		if err := tx.Table(issueTable).CreateInBatches(issueRows, 500).Error; err != nil {
			return fmt.Errorf("写入问题表 %s 失败: %w", issueTable, err)
		}
	}
	return nil
}
