/*
 * @module service/datasource/kafka
 * @description Kafka数据源，在刷新时从实体对应的暂存主题批量拉取JSON消息
 * @architecture 适配器模式 - 封装segmentio/kafka-go消费者
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow 创建Reader -> 批量拉取直到超时或无新消息 -> JSON解析为记录 -> 关闭Reader
 * @rules 拉取超时视为主题已排空而非错误；无法解析的消息跳过并告警
 * @dependencies github.com/segmentio/kafka-go, encoding/json
 * @refs interface.go
 */

package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"dataquality-service/service/models"

	"github.com/segmentio/kafka-go"
)

// KafkaSource Kafka暂存数据源
type KafkaSource struct {
	brokers     []string
	topicPrefix string
	groupID     string
	pollTimeout time.Duration
}

// NewKafkaSource 创建Kafka数据源
// 实体对应的主题为 {topicPrefix}{entity}
func NewKafkaSource(brokers []string, topicPrefix, groupID string, pollTimeout time.Duration) *KafkaSource {
	if pollTimeout <= 0 {
		pollTimeout = 5 * time.Second
	}
	return &KafkaSource{
		brokers:     brokers,
		topicPrefix: topicPrefix,
		groupID:     groupID,
		pollTimeout: pollTimeout,
	}
}

// Name 数据源类型名称
func (s *KafkaSource) Name() string {
	return "kafka"
}

// Fetch 排空实体暂存主题中的消息并解析为记录
func (s *KafkaSource) Fetch(ctx context.Context, entity models.EntityType) ([]*models.Record, error) {
	topic := s.topicPrefix + string(entity)
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  s.brokers,
		Topic:    topic,
		GroupID:  s.groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	records := make([]*models.Record, 0)
	for {
		fetchCtx, cancel := context.WithTimeout(ctx, s.pollTimeout)
		msg, err := reader.FetchMessage(fetchCtx)
		cancel()
		if err != nil {
			if err == context.DeadlineExceeded || fetchCtx.Err() == context.DeadlineExceeded {
				// 超时视为主题已排空
				break
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("拉取Kafka消息失败: %w", err)
		}

		var fields map[string]interface{}
		if err := json.Unmarshal(msg.Value, &fields); err != nil {
			slog.Warn("Kafka消息解析失败，已跳过", "topic", topic, "offset", msg.Offset, "error", err)
			continue
		}
		records = append(records, models.NewRecord(fields))

		if err := reader.CommitMessages(ctx, msg); err != nil {
			return nil, fmt.Errorf("提交Kafka消费位点失败: %w", err)
		}
	}

	slog.Info("Kafka暂存主题拉取完成", "topic", topic, "records", len(records))
	return records, nil
}
