/*
 * @module api/controllers/event_controller
 * @description 事件管理控制器，提供SSE连接用于接收刷新生命周期事件推送
 * @architecture MVC架构 - 控制器层
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow SSE连接建立 -> 事件通道监听 -> 实时推送 -> 连接断开清理
 * @rules 事件推送尽力而为，连接断开后立即清理客户端资源
 * @dependencies dataquality-service/service/event, github.com/go-chi/chi/v5
 * @refs service/event/event_service.go
 */

package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"dataquality-service/service/event"

	"github.com/go-chi/chi/v5"
)

// EventController 事件管理控制器
type EventController struct {
	eventService *event.EventService
}

// NewEventController 创建事件控制器实例
func NewEventController(eventService *event.EventService) *EventController {
	return &EventController{eventService: eventService}
}

// HandleSSE 处理SSE连接
// @Summary 建立SSE连接
// @Description 前端页面通过此接口建立SSE连接，接收刷新生命周期事件推送
// @Tags 事件管理
// @Param user_name path string true "用户名"
// @Success 200 {string} string "SSE事件流"
// @Router /sse/{user_name} [get]
func (c *EventController) HandleSSE(w http.ResponseWriter, r *http.Request) {
	userName := chi.URLParam(r, "user_name")
	if userName == "" {
		http.Error(w, "用户名不能为空", http.StatusBadRequest)
		return
	}

	// 设置SSE响应头
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Cache-Control")

	client := c.eventService.AddConnection(userName)
	defer c.eventService.RemoveConnection(userName, client.ID)

	// 发送连接成功事件
	fmt.Fprintf(w, "data: {\"type\":\"connected\",\"connection_id\":\"%s\",\"timestamp\":\"%s\"}\n\n",
		client.ID, time.Now().Format(time.RFC3339))

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	for {
		select {
		case ev, ok := <-client.Channel:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", toJSON(ev))

			if flusher, ok := w.(http.Flusher); ok {
				flusher.Flush()
			}

		case <-client.Done:
			return

		case <-r.Context().Done():
			return
		}
	}
}

// toJSON 将对象转换为JSON字符串
func toJSON(v interface{}) string {
	data, _ := json.Marshal(v)
	return string(data)
}
