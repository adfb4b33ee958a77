/*
 * @module service/datasource/mqtt
 * @description MQTT数据源，常驻订阅实体暂存主题并缓冲消息，刷新时批量取出
 * @architecture 发布订阅模式 - 连接MQTT broker订阅主题，消息缓冲到下一次刷新
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow 连接broker -> 订阅{prefix}/{entity} -> 消息缓冲 -> 刷新时Fetch排空缓冲
 * @rules 支持自动重连；无法解析的消息跳过并告警；Fetch排空后缓冲重新累积
 * @dependencies github.com/eclipse/paho.mqtt.golang, encoding/json, sync
 * @refs interface.go
 */

package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"dataquality-service/service/models"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTTSource MQTT暂存数据源
type MQTTSource struct {
	broker      string
	clientID    string
	username    string
	password    string
	topicPrefix string
	qos         byte

	client  mqtt.Client
	buffers map[models.EntityType][]*models.Record
	mu      sync.Mutex
}

// NewMQTTSource 创建MQTT数据源
// 实体对应的主题为 {topicPrefix}/{entity}
func NewMQTTSource(broker, clientID, username, password, topicPrefix string) *MQTTSource {
	return &MQTTSource{
		broker:      broker,
		clientID:    clientID,
		username:    username,
		password:    password,
		topicPrefix: strings.TrimSuffix(topicPrefix, "/"),
		qos:         1,
		buffers:     make(map[models.EntityType][]*models.Record),
	}
}

// Name 数据源类型名称
func (s *MQTTSource) Name() string {
	return "mqtt"
}

// Start 连接broker并订阅所有实体的暂存主题
func (s *MQTTSource) Start(entities []models.EntityType) error {
	opts := mqtt.NewClientOptions().
		AddBroker(s.broker).
		SetClientID(s.clientID).
		SetUsername(s.username).
		SetPassword(s.password).
		SetAutoReconnect(true).
		SetConnectRetryInterval(5 * time.Second).
		SetKeepAlive(60 * time.Second)

	s.client = mqtt.NewClient(opts)
	if token := s.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("连接MQTT broker失败: %w", token.Error())
	}

	for _, entity := range entities {
		topic := fmt.Sprintf("%s/%s", s.topicPrefix, entity)
		e := entity
		token := s.client.Subscribe(topic, s.qos, func(_ mqtt.Client, msg mqtt.Message) {
			s.bufferMessage(e, msg.Topic(), msg.Payload())
		})
		if token.Wait() && token.Error() != nil {
			return fmt.Errorf("订阅主题 %s 失败: %w", topic, token.Error())
		}
		slog.Info("MQTT主题订阅成功", "topic", topic)
	}
	return nil
}

// Stop 断开MQTT连接
func (s *MQTTSource) Stop() {
	if s.client != nil && s.client.IsConnected() {
		s.client.Disconnect(250)
	}
}

// bufferMessage 解析消息并放入实体缓冲
func (s *MQTTSource) bufferMessage(entity models.EntityType, topic string, payload []byte) {
	var fields map[string]interface{}
	if err := json.Unmarshal(payload, &fields); err != nil {
		slog.Warn("MQTT消息解析失败，已跳过", "topic", topic, "error", err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buffers[entity] = append(s.buffers[entity], models.NewRecord(fields))
}

// Fetch 排空实体缓冲并返回缓冲的记录
func (s *MQTTSource) Fetch(ctx context.Context, entity models.EntityType) ([]*models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := s.buffers[entity]
	s.buffers[entity] = nil
	if records == nil {
		records = []*models.Record{}
	}
	slog.Info("MQTT缓冲排空", "entity", entity, "records", len(records))
	return records, nil
}
