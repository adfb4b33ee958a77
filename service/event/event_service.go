/*
 * @module service/event/event_service
 * @description 事件管理服务，通过SSE向订阅客户端推送刷新生命周期事件
 * @architecture 事件驱动架构 - 业务服务层
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow 刷新开始/完成/失败 -> 事件广播 -> SSE客户端推送
 * @rules 事件推送尽力而为，客户端通道满时丢弃事件而不阻塞流水线
 * @dependencies github.com/google/uuid, sync
 * @refs api/controllers/event_controller.go, service/pipeline/pipeline.go
 */

package event

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// 刷新生命周期事件类型
const (
	EventRefreshStarted   = "refresh_started"
	EventRefreshCompleted = "refresh_completed"
	EventRefreshFailed    = "refresh_failed"
)

// Event SSE事件
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
}

// Client SSE客户端连接
type Client struct {
	ID       string
	UserName string
	Channel  chan *Event
	Done     chan bool
}

// EventService 事件管理服务
type EventService struct {
	connections map[string]map[string]*Client // userName -> connectionID -> client
	mu          sync.RWMutex
}

// NewEventService 创建事件服务实例
func NewEventService() *EventService {
	return &EventService{
		connections: make(map[string]map[string]*Client),
	}
}

// AddConnection 添加SSE连接
func (s *EventService) AddConnection(userName string) *Client {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.connections[userName] == nil {
		s.connections[userName] = make(map[string]*Client)
	}

	client := &Client{
		ID:       uuid.New().String(),
		UserName: userName,
		Channel:  make(chan *Event, 100), // 缓冲100个事件
		Done:     make(chan bool),
	}
	s.connections[userName][client.ID] = client

	slog.Info("SSE连接已建立", "user", userName, "connection_id", client.ID)
	return client
}

// RemoveConnection 移除SSE连接
func (s *EventService) RemoveConnection(userName, connectionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if clients, ok := s.connections[userName]; ok {
		if client, ok := clients[connectionID]; ok {
			close(client.Channel)
			delete(clients, connectionID)
		}
		if len(clients) == 0 {
			delete(s.connections, userName)
		}
	}
	slog.Info("SSE连接已断开", "user", userName, "connection_id", connectionID)
}

// Broadcast 向所有在线客户端广播事件
func (s *EventService) Broadcast(eventType string, data map[string]interface{}) {
	event := &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now(),
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, clients := range s.connections {
		for _, client := range clients {
			select {
			case client.Channel <- event:
			default:
				// 通道已满，丢弃事件，不阻塞广播方
				slog.Warn("SSE客户端通道已满，事件被丢弃",
					"user", client.UserName, "event_type", eventType)
			}
		}
	}
}
