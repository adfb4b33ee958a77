/*
 * @module service/cache/score_cache
 * @description Redis缓存层，缓存最近一次刷新的质量评分和刷新摘要，加速看板读取
 * @architecture 缓存旁路模式 - 缓存未命中时调用方回源数据库
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow 刷新完成 -> 写入缓存 -> 看板读取 -> 未命中回源
 * @rules 缓存失效不影响正确性，数据库始终为权威数据源
 * @dependencies github.com/go-redis/redis/v8, encoding/json
 * @refs service/pipeline/pipeline.go, api/controllers/quality_controller.go
 */

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dataquality-service/service/quality"

	"github.com/go-redis/redis/v8"
)

const (
	scoresKey       = "dq:latest:scores"
	batchKey        = "dq:latest:batch"
	defaultScoreTTL = 24 * time.Hour
)

// ScoreCache 质量评分缓存
type ScoreCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewScoreCache 创建评分缓存
func NewScoreCache(client *redis.Client) *ScoreCache {
	return &ScoreCache{client: client, ttl: defaultScoreTTL}
}

// SetScores 写入最近一次刷新的评分
func (c *ScoreCache) SetScores(ctx context.Context, batchID string, scores []quality.ScoreResult) error {
	data, err := json.Marshal(scores)
	if err != nil {
		return fmt.Errorf("评分序列化失败: %w", err)
	}
	pipe := c.client.TxPipeline()
	pipe.Set(ctx, scoresKey, data, c.ttl)
	pipe.Set(ctx, batchKey, batchID, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("评分缓存写入失败: %w", err)
	}
	return nil
}

// GetScores 读取缓存的评分，未命中时返回nil和false
func (c *ScoreCache) GetScores(ctx context.Context) ([]quality.ScoreResult, bool) {
	data, err := c.client.Get(ctx, scoresKey).Bytes()
	if err != nil {
		return nil, false
	}
	var scores []quality.ScoreResult
	if err := json.Unmarshal(data, &scores); err != nil {
		return nil, false
	}
	return scores, true
}

// GetLatestBatchID 读取缓存的最近批次ID
func (c *ScoreCache) GetLatestBatchID(ctx context.Context) (string, bool) {
	batchID, err := c.client.Get(ctx, batchKey).Result()
	if err != nil {
		return "", false
	}
	return batchID, true
}
