/*
 * @module api/controllers/refresh_controller
 * @description 刷新控制器，提供刷新流水线的调用入口和批次查询
 * @architecture MVC架构 - 控制器层
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow 请求接收 -> 流水线执行 -> 批次结果返回
 * @rules 刷新调度由外部编排系统负责，本接口仅提供单次调用入口；引擎可重入幂等
 * @dependencies dataquality-service/service/pipeline, gorm.io/gorm
 * @refs service/pipeline/pipeline.go
 */

package controllers

import (
	"errors"
	"net/http"

	"dataquality-service/service/models"
	"dataquality-service/service/pipeline"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"gorm.io/gorm"
)

// RefreshController 刷新控制器
type RefreshController struct {
	pipeline *pipeline.Pipeline
	db       *gorm.DB
}

// NewRefreshController 创建刷新控制器实例
func NewRefreshController(p *pipeline.Pipeline, db *gorm.DB) *RefreshController {
	return &RefreshController{pipeline: p, db: db}
}

// TriggerRefresh 执行一次刷新
// @Summary 执行一次刷新
// @Description 同步执行一次完整的刷新流水线并返回批次结果，调度由外部编排系统负责
// @Tags 刷新管理
// @Produce json
// @Success 200 {object} APIResponse{data=models.RefreshBatch}
// @Failure 409 {object} APIResponse
// @Failure 500 {object} APIResponse
// @Router /refresh [post]
func (c *RefreshController) TriggerRefresh(w http.ResponseWriter, r *http.Request) {
	batch, err := c.pipeline.Run(r.Context())
	if err != nil {
		if errors.Is(err, pipeline.ErrRefreshInProgress) {
			render.Status(r, http.StatusConflict)
			render.JSON(w, r, Fail(err.Error()))
			return
		}
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, Fail("刷新执行失败: "+err.Error()))
		return
	}
	render.JSON(w, r, OK("刷新执行完成", batch))
}

// GetLatestRefresh 获取最近一次刷新批次
// @Summary 获取最近一次刷新批次
// @Description 通过当前批次指针返回最近一次成功落库的刷新批次
// @Tags 刷新管理
// @Produce json
// @Success 200 {object} APIResponse{data=models.RefreshBatch}
// @Failure 404 {object} APIResponse
// @Router /refresh/latest [get]
func (c *RefreshController) GetLatestRefresh(w http.ResponseWriter, r *http.Request) {
	var pointer models.RefreshPointer
	if err := c.db.First(&pointer, 1).Error; err != nil {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, Fail("尚未完成任何刷新"))
		return
	}
	var batch models.RefreshBatch
	if err := c.db.First(&batch, "id = ?", pointer.CurrentBatchID).Error; err != nil {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, Fail("批次记录不存在"))
		return
	}
	render.JSON(w, r, OK("获取最近刷新批次成功", batch))
}

// GetRefresh 获取指定刷新批次
// @Summary 获取指定刷新批次
// @Description 根据批次ID返回刷新批次详情，包含各实体的处理结果
// @Tags 刷新管理
// @Produce json
// @Param id path string true "批次ID"
// @Success 200 {object} APIResponse{data=models.RefreshBatch}
// @Failure 404 {object} APIResponse
// @Router /refresh/{id} [get]
func (c *RefreshController) GetRefresh(w http.ResponseWriter, r *http.Request) {
	batchID := chi.URLParam(r, "id")
	var batch models.RefreshBatch
	if err := c.db.First(&batch, "id = ?", batchID).Error; err != nil {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, Fail("批次记录不存在"))
		return
	}
	render.JSON(w, r, OK("获取刷新批次成功", batch))
}
