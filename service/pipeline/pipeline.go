/*
 * @module service/pipeline/pipeline
 * @description 刷新流水线，编排一次完整的刷新周期：摄取、分类、分区、对账、异常检测、评分和落库
 * @architecture 批处理流水线 - 实体分两阶段并行分类，阶段间传递只读上下文
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow 获取分布式锁 -> 摄取 -> 客户/商品分类 -> 订单/明细/支付/配送分类 -> 对账 -> 异常检测 -> 评分 -> 快照落库 -> 指标与事件
 * @rules 参照规则依赖的金表主键集合必须在依赖实体分类前构建完成；单实体结构损坏不影响其他实体；刷新可重入幂等
 * @dependencies dataquality-service/service/quality, service/recon, service/anomaly, gorm.io/gorm
 * @refs snapshot.go, service/init.go, api/controllers/refresh_controller.go
 */

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"dataquality-service/service/anomaly"
	"dataquality-service/service/cache"
	"dataquality-service/service/datasource"
	"dataquality-service/service/distributed_lock"
	"dataquality-service/service/event"
	"dataquality-service/service/metrics"
	"dataquality-service/service/models"
	"dataquality-service/service/quality"
	"dataquality-service/service/recon"

	"gorm.io/gorm"
)

// ErrRefreshInProgress 已有刷新正在执行
var ErrRefreshInProgress = errors.New("另一次刷新正在执行中")

// refreshLockKey 刷新互斥锁的键
const refreshLockKey = "pipeline"

// 日指标名称
const (
	MetricOrdersCount     = "orders_count"
	MetricRevenueCaptured = "revenue_captured"
)

// Options 流水线配置
type Options struct {
	ReconTolerance    float64
	AnomalyWindowDays int
	AnomalySigma      float64
	LockTTL           time.Duration
}

// Pipeline 刷新流水线
type Pipeline struct {
	db         *gorm.DB
	sources    *datasource.Registry
	catalog    *quality.Catalog
	classifier *quality.Classifier
	reconEng   *recon.Engine
	detector   *anomaly.Detector

	locker     distributed_lock.DistributedLock
	scoreCache *cache.ScoreCache
	events     *event.EventService
	collector  *metrics.Collector

	lockTTL time.Duration
}

// New 创建刷新流水线
func New(db *gorm.DB, sources *datasource.Registry, catalog *quality.Catalog, opts Options) *Pipeline {
	if opts.LockTTL <= 0 {
		opts.LockTTL = 10 * time.Minute
	}
	return &Pipeline{
		db:         db,
		sources:    sources,
		catalog:    catalog,
		classifier: quality.NewClassifier(catalog),
		reconEng:   recon.NewEngine(opts.ReconTolerance),
		detector:   anomaly.NewDetector(opts.AnomalyWindowDays, opts.AnomalySigma),
		lockTTL:    opts.LockTTL,
	}
}

// SetLock 设置分布式锁，多实例部署时防止并发刷新
func (p *Pipeline) SetLock(locker distributed_lock.DistributedLock) {
	p.locker = locker
}

// SetScoreCache 设置评分缓存
func (p *Pipeline) SetScoreCache(c *cache.ScoreCache) {
	p.scoreCache = c
}

// SetEventService 设置事件服务
func (p *Pipeline) SetEventService(events *event.EventService) {
	p.events = events
}

// SetCollector 设置Prometheus指标收集器
func (p *Pipeline) SetCollector(collector *metrics.Collector) {
	p.collector = collector
}

// Run 执行一次完整刷新
// 相同输入重复执行产出相同结果；刷新失败时不修改当前输出表
func (p *Pipeline) Run(ctx context.Context) (*models.RefreshBatch, error) {
	if p.locker != nil {
		acquired, err := p.locker.TryLock(ctx, refreshLockKey, p.lockTTL)
		if err != nil {
			slog.Warn("分布式锁不可用，降级为无锁刷新", "error", err)
		} else if !acquired {
			return nil, ErrRefreshInProgress
		} else {
			renewCtx, stopRenew := context.WithCancel(ctx)
			go p.renewLock(renewCtx)
			defer func() {
				stopRenew()
				if err := p.locker.Unlock(context.Background(), refreshLockKey); err != nil {
					slog.Warn("释放刷新锁失败", "error", err)
				}
			}()
		}
	}

	started := time.Now()
	batch := &models.RefreshBatch{Status: models.BatchStatusRunning, StartedAt: started}
	if err := p.db.Create(batch).Error; err != nil {
		return nil, fmt.Errorf("创建刷新批次失败: %w", err)
	}
	p.broadcast(event.EventRefreshStarted, map[string]interface{}{"batch_id": batch.ID})
	slog.Info("刷新开始", "batch_id", batch.ID)

	snap := NewSnapshot(batch.ID)

	// 摄取全部实体的暂存记录
	staged := p.loadStagedRecords(ctx, snap)

	// 第一阶段：客户和商品并行分类，二者无前置依赖
	p.classifyStage(snap, staged, []models.EntityType{models.EntityCustomer, models.EntityProduct},
		func(models.EntityType) *quality.Context { return quality.NewContext() })

	// 阶段间上下文：用第一阶段的金表构建主键集合和注册日期索引
	stageCtx := p.buildStageContext(snap)

	// 第二阶段：订单、明细、支付、配送并行分类
	p.classifyStage(snap, staged,
		[]models.EntityType{models.EntityOrder, models.EntityOrderItem, models.EntityPayment, models.EntityDelivery},
		stageCtx)

	// 对账：金表订单明细 vs 金表支付；任一输入实体失败时保留上一批次对账结果
	if !snap.Failed(models.EntityOrderItem) && !snap.Failed(models.EntityPayment) {
		snap.Recon = p.reconEng.Reconcile(
			snap.Gold(models.EntityOrderItem), snap.Gold(models.EntityPayment))
		snap.ReconReady = true
	}

	// 日指标与异常检测
	snap.Metrics, snap.MetricNames = p.detectAnomalies(snap)

	// 实体级评分
	snap.Scores = p.aggregateScores(snap)

	// 快照原子落库
	finished := time.Now()
	batch.Status = snap.Status()
	batch.FinishedAt = &finished
	batch.EntityResults = snap.EntityResults()
	if err := p.persist(snap, batch); err != nil {
		p.recordRefresh(models.BatchStatusFailed, time.Since(started))
		p.broadcast(event.EventRefreshFailed, map[string]interface{}{
			"batch_id": batch.ID, "error": err.Error(),
		})
		return batch, err
	}

	p.afterPersist(ctx, snap, batch)
	p.recordRefresh(batch.Status, time.Since(started))
	slog.Info("刷新完成", "batch_id", batch.ID, "status", batch.Status,
		"duration", time.Since(started).String())
	return batch, nil
}

// loadStagedRecords 按实体拉取暂存记录，拉取失败按实体级失败处理
func (p *Pipeline) loadStagedRecords(ctx context.Context, snap *Snapshot) map[models.EntityType][]*models.Record {
	staged := make(map[models.EntityType][]*models.Record, len(models.AllEntityTypes))
	for _, entity := range models.AllEntityTypes {
		source := p.sources.SourceFor(entity)
		if source == nil {
			staged[entity] = []*models.Record{}
			continue
		}
		records, err := source.Fetch(ctx, entity)
		if err != nil {
			slog.Error("实体暂存记录拉取失败", "entity", entity, "source", source.Name(), "error", err)
			snap.FailEntity(entity, fmt.Errorf("暂存记录拉取失败: %w", err))
			continue
		}
		staged[entity] = records
	}
	return staged
}

// classifyStage 并行分类一组互不依赖的实体
func (p *Pipeline) classifyStage(snap *Snapshot, staged map[models.EntityType][]*models.Record,
	entities []models.EntityType, contextFor func(models.EntityType) *quality.Context) {
	var wg sync.WaitGroup
	for _, entity := range entities {
		if snap.Failed(entity) {
			continue
		}
		records, ok := staged[entity]
		if !ok {
			continue
		}
		wg.Add(1)
		go func(entity models.EntityType, records []*models.Record) {
			defer wg.Done()
			classified, err := p.classifier.Classify(entity, records, contextFor(entity))
			if err != nil {
				slog.Error("实体分类失败", "entity", entity, "error", err)
				snap.FailEntity(entity, err)
				return
			}
			gold, issues := quality.Partition(classified)
			snap.SetPartition(entity, gold, issues)
		}(entity, records)
	}
	wg.Wait()
}

// buildStageContext 用第一阶段金表构建第二阶段各实体的规则上下文
// 返回的上下文在第二阶段内为只读快照
func (p *Pipeline) buildStageContext(snap *Snapshot) func(models.EntityType) *quality.Context {
	customerGold := snap.Gold(models.EntityCustomer)
	productGold := snap.Gold(models.EntityProduct)

	customerKeys := quality.CollectKeySet(models.EntityCustomer, customerGold)
	productKeys := quality.CollectKeySet(models.EntityProduct, productGold)

	signupIndex := quality.NewContext()
	for _, record := range customerGold {
		key := record.Key(models.EntityCustomer)
		if key == "" {
			continue
		}
		if signup, ok := record.Fields["signup_date"]; ok {
			signupIndex.IndexField(models.EntityCustomer, key, "signup_date", signup)
		}
	}

	return func(entity models.EntityType) *quality.Context {
		ctx := quality.NewContext()
		switch entity {
		case models.EntityOrder:
			// 客户主键集合缺失时按评估缺口处理，仅在金表可用时注入
			if !snap.Failed(models.EntityCustomer) {
				ctx.SetKeySet(models.EntityCustomer, customerKeys)
				ctx.FieldIndex = signupIndex.FieldIndex
			}
		case models.EntityOrderItem:
			if !snap.Failed(models.EntityProduct) {
				ctx.SetKeySet(models.EntityProduct, productKeys)
			}
		}
		return ctx
	}
}

// detectAnomalies 从金表构建日指标序列并执行异常检测，返回指标点和本次重建的序列名
// 订单量按下单日期计数，已捕获支付金额按支付日期求和；输入实体失败时跳过对应序列
func (p *Pipeline) detectAnomalies(snap *Snapshot) ([]models.DailyMetric, []string) {
	var results []models.DailyMetric
	var rebuilt []string

	if !snap.Failed(models.EntityOrder) {
		ordersByDay := make(map[time.Time]float64)
		for _, order := range snap.Gold(models.EntityOrder) {
			if day, ok := recordDay(order, "order_datetime"); ok {
				ordersByDay[day]++
			}
		}
		results = append(results, p.detector.Detect(MetricOrdersCount, toSeries(ordersByDay))...)
		rebuilt = append(rebuilt, MetricOrdersCount)
	}

	if !snap.Failed(models.EntityPayment) {
		revenueByDay := make(map[time.Time]float64)
		for _, payment := range snap.Gold(models.EntityPayment) {
			if !strings.EqualFold(strings.TrimSpace(payment.StringField("status")), "captured") {
				continue
			}
			amount, ok := payment.FloatField("amount")
			if !ok {
				continue
			}
			if day, dayOK := recordDay(payment, "payment_datetime"); dayOK {
				revenueByDay[day] += amount
			}
		}
		results = append(results, p.detector.Detect(MetricRevenueCaptured, toSeries(revenueByDay))...)
		rebuilt = append(rebuilt, MetricRevenueCaptured)
	}
	return results, rebuilt
}

// aggregateScores 计算各实体的问题率和质量评分，失败实体不评分
func (p *Pipeline) aggregateScores(snap *Snapshot) []quality.ScoreResult {
	scores := make([]quality.ScoreResult, 0, len(models.AllEntityTypes))
	for _, entity := range models.AllEntityTypes {
		snap.mu.Lock()
		outcome, ok := snap.outcomes[entity]
		snap.mu.Unlock()
		if !ok || outcome.err != nil {
			continue
		}
		scores = append(scores, quality.Score(entity,
			int64(len(outcome.gold)), int64(len(outcome.issues))))
	}
	return scores
}

// persist 落库，并在失败时将批次标记为failed
func (p *Pipeline) persist(snap *Snapshot, batch *models.RefreshBatch) error {
	if err := snap.Persist(p.db); err != nil {
		message := err.Error()
		batch.Status = models.BatchStatusFailed
		batch.ErrorMessage = &message
		if saveErr := p.db.Save(batch).Error; saveErr != nil {
			slog.Error("批次失败状态写入失败", "batch_id", batch.ID, "error", saveErr)
		}
		return fmt.Errorf("快照落库失败: %w", err)
	}
	return p.db.Save(batch).Error
}

// afterPersist 落库成功后的指标更新、缓存写入和事件广播
func (p *Pipeline) afterPersist(ctx context.Context, snap *Snapshot, batch *models.RefreshBatch) {
	anomalyCount := 0
	for _, metric := range snap.Metrics {
		if metric.AnomalyFlag {
			anomalyCount++
		}
	}
	if p.collector != nil {
		for _, score := range snap.Scores {
			p.collector.RecordScore(string(score.EntityType), score.GoldCount, score.IssueCount, score.DQScore)
		}
		p.collector.RecordAnomalies(anomalyCount)
	}
	if p.scoreCache != nil {
		if err := p.scoreCache.SetScores(ctx, batch.ID, snap.Scores); err != nil {
			slog.Warn("评分缓存写入失败", "batch_id", batch.ID, "error", err)
		}
	}
	p.broadcast(event.EventRefreshCompleted, map[string]interface{}{
		"batch_id":      batch.ID,
		"status":        batch.Status,
		"anomaly_count": anomalyCount,
	})
}

func (p *Pipeline) broadcast(eventType string, data map[string]interface{}) {
	if p.events != nil {
		p.events.Broadcast(eventType, data)
	}
}

// renewLock 刷新期间周期性续期锁，防止长刷新超过TTL后锁被其他实例抢占
func (p *Pipeline) renewLock(ctx context.Context) {
	ticker := time.NewTicker(p.lockTTL / 3)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.locker.Refresh(ctx, refreshLockKey, p.lockTTL); err != nil {
				slog.Warn("刷新锁续期失败", "error", err)
			}
		}
	}
}

func (p *Pipeline) recordRefresh(status string, elapsed time.Duration) {
	if p.collector != nil {
		p.collector.RecordRefresh(status, elapsed.Seconds())
	}
}

// recordDay 读取记录的日期字段并截断到日
func recordDay(record *models.Record, field string) (time.Time, bool) {
	t, ok := record.TimeField(field)
	if !ok {
		return time.Time{}, false
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
}

// toSeries 将按日聚合结果转为按日期升序的序列
func toSeries(byDay map[time.Time]float64) []anomaly.Point {
	series := make([]anomaly.Point, 0, len(byDay))
	for day, value := range byDay {
		series = append(series, anomaly.Point{Date: day, Value: value})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })
	return series
}
