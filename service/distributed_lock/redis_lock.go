/*
 * @module service/distributed_lock/redis_lock
 * @description Redis分布式锁实现，用于多实例环境下的刷新流水线防重
 * @architecture 工具层 - 提供分布式锁能力
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow 获取锁 -> 执行刷新 -> 释放锁/自动过期
 * @rules 使用Redis SET NX实现，支持锁续期和自动过期；仅锁持有者可释放
 * @dependencies github.com/go-redis/redis/v8
 * @refs service/init.go, service/pipeline/pipeline.go
 */

package distributed_lock

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
)

// DistributedLock 分布式锁接口
type DistributedLock interface {
	// TryLock 尝试获取锁
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Unlock 释放锁
	Unlock(ctx context.Context, key string) error
	// Refresh 刷新锁的过期时间
	Refresh(ctx context.Context, key string, ttl time.Duration) error
}

// RedisLock Redis分布式锁实现
type RedisLock struct {
	client     *redis.Client
	instanceID string // 实例ID，用于标识锁的持有者
}

// NewRedisLock 基于已有Redis客户端创建分布式锁
func NewRedisLock(client *redis.Client) *RedisLock {
	hostname, _ := os.Hostname()
	instanceID := fmt.Sprintf("%s:%d", hostname, os.Getpid())

	return &RedisLock{
		client:     client,
		instanceID: instanceID,
	}
}

func (r *RedisLock) lockKey(key string) string {
	return fmt.Sprintf("dq_refresh:lock:%s", key)
}

// TryLock 尝试获取锁
// 使用SET NX命令，只有当key不存在时才会设置成功
func (r *RedisLock) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	result, err := r.client.SetNX(ctx, r.lockKey(key), r.instanceID, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("获取锁失败: %w", err)
	}

	if result {
		slog.Debug("分布式锁: 成功获取锁", "key", key, "ttl", ttl, "instance", r.instanceID)
	}
	return result, nil
}

// Unlock 释放锁
// 使用Lua脚本确保只有锁的持有者才能释放锁
func (r *RedisLock) Unlock(ctx context.Context, key string) error {
	script := `
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("del", KEYS[1])
		else
			return 0
		end
	`
	result, err := r.client.Eval(ctx, script, []string{r.lockKey(key)}, r.instanceID).Result()
	if err != nil {
		return fmt.Errorf("释放锁失败: %w", err)
	}
	if result.(int64) == 0 {
		slog.Warn("分布式锁: 锁已不属于当前实例", "key", key, "instance", r.instanceID)
	}
	return nil
}

// Refresh 刷新锁的过期时间，仅持有者可续期
func (r *RedisLock) Refresh(ctx context.Context, key string, ttl time.Duration) error {
	script := `
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("pexpire", KEYS[1], ARGV[2])
		else
			return 0
		end
	`
	_, err := r.client.Eval(ctx, script, []string{r.lockKey(key)}, r.instanceID, ttl.Milliseconds()).Result()
	if err != nil {
		return fmt.Errorf("续期锁失败: %w", err)
	}
	return nil
}
