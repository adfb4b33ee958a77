/*
 * @module api/controllers/recon_controller
 * @description 对账控制器，提供订单级对账记录查询和对账汇总指标
 * @architecture MVC架构 - 控制器层
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow 请求接收 -> 对账表查询 -> 响应返回
 * @rules 对账表内容为最近一次刷新的全量重算结果
 * @dependencies gorm.io/gorm
 * @refs service/recon/engine.go
 */

package controllers

import (
	"net/http"

	"dataquality-service/service/models"

	"github.com/go-chi/render"
	"gorm.io/gorm"
)

// ReconController 对账控制器
type ReconController struct {
	db *gorm.DB
}

// NewReconController 创建对账控制器实例
func NewReconController(db *gorm.DB) *ReconController {
	return &ReconController{db: db}
}

// ReconSummary 对账汇总指标
type ReconSummary struct {
	TotalOrders        int64 `json:"total_orders"`
	OrdersWithMismatch int64 `json:"orders_with_mismatch"`
}

// GetReconRecords 获取对账记录
// @Summary 获取订单对账记录
// @Description 分页返回订单明细合计与已捕获支付合计的对账结果，可按不匹配标记筛选
// @Tags 对账
// @Produce json
// @Param mismatch_only query bool false "仅返回不匹配记录"
// @Param page query int false "页码" default(1)
// @Param size query int false "每页大小" default(20)
// @Success 200 {object} PaginatedResponse{data=[]models.ReconRecord}
// @Failure 500 {object} APIResponse
// @Router /recon/records [get]
func (c *ReconController) GetReconRecords(w http.ResponseWriter, r *http.Request) {
	page, size := pageParams(r)

	query := c.db.Model(&models.ReconRecord{})
	if r.URL.Query().Get("mismatch_only") == "true" {
		query = query.Where("status_mismatch_flag = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, Fail("对账记录查询失败: "+err.Error()))
		return
	}
	var records []models.ReconRecord
	if err := query.Order("order_id").
		Offset((page - 1) * size).Limit(size).Find(&records).Error; err != nil {
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, Fail("对账记录查询失败: "+err.Error()))
		return
	}
	render.JSON(w, r, &PaginatedResponse{
		Status: 0, Msg: "获取对账记录成功", Data: records, Total: total, Page: page, Size: size,
	})
}

// GetReconSummary 获取对账汇总指标
// @Summary 获取对账汇总指标
// @Description 返回对账订单总数和存在金额不匹配的订单数
// @Tags 对账
// @Produce json
// @Success 200 {object} APIResponse{data=ReconSummary}
// @Failure 500 {object} APIResponse
// @Router /recon/summary [get]
func (c *ReconController) GetReconSummary(w http.ResponseWriter, r *http.Request) {
	var summary ReconSummary
	if err := c.db.Model(&models.ReconRecord{}).
		Distinct("order_id").Count(&summary.TotalOrders).Error; err != nil {
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, Fail("对账汇总查询失败: "+err.Error()))
		return
	}
	if err := c.db.Model(&models.ReconRecord{}).
		Where("status_mismatch_flag = ?", true).
		Distinct("order_id").Count(&summary.OrdersWithMismatch).Error; err != nil {
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, Fail("对账汇总查询失败: "+err.Error()))
		return
	}
	render.JSON(w, r, OK("获取对账汇总成功", summary))
}
