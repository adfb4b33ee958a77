/*
 * @module api/controllers/quality_controller
 * @description 数据质量控制器，提供金表/问题表查询、规则目录查询和质量评分查询
 * @architecture MVC架构 - 控制器层
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow 请求接收 -> 缓存/数据库查询 -> 响应返回
 * @rules 评分查询优先命中Redis缓存，未命中回源数据库；数据库始终为权威数据源
 * @dependencies dataquality-service/service/quality, service/cache, gorm.io/gorm
 * @refs service/quality/, service/models/
 */

package controllers

import (
	"net/http"
	"strconv"

	"dataquality-service/service/cache"
	"dataquality-service/service/models"
	"dataquality-service/service/quality"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"gorm.io/gorm"
)

// QualityController 数据质量控制器
type QualityController struct {
	db         *gorm.DB
	catalog    *quality.Catalog
	scoreCache *cache.ScoreCache
}

// NewQualityController 创建数据质量控制器实例，scoreCache可为nil
func NewQualityController(db *gorm.DB, catalog *quality.Catalog, scoreCache *cache.ScoreCache) *QualityController {
	return &QualityController{db: db, catalog: catalog, scoreCache: scoreCache}
}

// RuleInfo 规则目录条目
type RuleInfo struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// pageParams 解析分页参数
func pageParams(r *http.Request) (page, size int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page <= 0 {
		page = 1
	}
	size, _ = strconv.Atoi(r.URL.Query().Get("size"))
	if size <= 0 {
		size = 20
	}
	return page, size
}

// entityParam 解析并校验实体类型路径参数
func entityParam(w http.ResponseWriter, r *http.Request) (models.EntityType, bool) {
	entity, ok := models.ParseEntityType(chi.URLParam(r, "entity"))
	if !ok {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, Fail("未知的实体类型"))
		return "", false
	}
	return entity, true
}

// GetRules 获取规则目录
// @Summary 获取验证规则目录
// @Description 按实体类型返回规则名称和类别，规则目录为固定类型化目录
// @Tags 数据质量
// @Produce json
// @Success 200 {object} APIResponse{data=map[string][]RuleInfo}
// @Router /quality/rules [get]
func (c *QualityController) GetRules(w http.ResponseWriter, r *http.Request) {
	result := make(map[string][]RuleInfo, len(models.AllEntityTypes))
	for _, entity := range models.AllEntityTypes {
		rules := c.catalog.RulesFor(entity)
		infos := make([]RuleInfo, 0, len(rules))
		for _, rule := range rules {
			infos = append(infos, RuleInfo{Name: rule.Name(), Kind: string(rule.Kind())})
		}
		result[string(entity)] = infos
	}
	render.JSON(w, r, OK("获取规则目录成功", result))
}

// GetGoldRecords 获取实体金表记录
// @Summary 获取实体金表记录
// @Description 分页返回通过全部验证规则的记录
// @Tags 数据质量
// @Produce json
// @Param entity path string true "实体类型" Enums(customers,products,orders,order_items,payments,deliveries)
// @Param page query int false "页码" default(1)
// @Param size query int false "每页大小" default(20)
// @Success 200 {object} PaginatedResponse{data=[]models.GoldRow}
// @Failure 400 {object} APIResponse
// @Router /quality/gold/{entity} [get]
func (c *QualityController) GetGoldRecords(w http.ResponseWriter, r *http.Request) {
	entity, ok := entityParam(w, r)
	if !ok {
		return
	}
	page, size := pageParams(r)

	table := models.GoldTableName(entity)
	var total int64
	if err := c.db.Table(table).Count(&total).Error; err != nil {
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, Fail("金表查询失败: "+err.Error()))
		return
	}
	var rows []models.GoldRow
	if err := c.db.Table(table).Order("record_key").
		Offset((page - 1) * size).Limit(size).Find(&rows).Error; err != nil {
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, Fail("金表查询失败: "+err.Error()))
		return
	}
	render.JSON(w, r, &PaginatedResponse{
		Status: 0, Msg: "获取金表记录成功", Data: rows, Total: total, Page: page, Size: size,
	})
}

// GetIssueRecords 获取实体问题表记录
// @Summary 获取实体问题表记录
// @Description 分页返回至少违反一条验证规则的记录，保留全部规则标记用于审计
// @Tags 数据质量
// @Produce json
// @Param entity path string true "实体类型" Enums(customers,products,orders,order_items,payments,deliveries)
// @Param page query int false "页码" default(1)
// @Param size query int false "每页大小" default(20)
// @Success 200 {object} PaginatedResponse{data=[]models.IssueRow}
// @Failure 400 {object} APIResponse
// @Router /quality/issues/{entity} [get]
func (c *QualityController) GetIssueRecords(w http.ResponseWriter, r *http.Request) {
	entity, ok := entityParam(w, r)
	if !ok {
		return
	}
	page, size := pageParams(r)

	table := models.IssueTableName(entity)
	var total int64
	if err := c.db.Table(table).Count(&total).Error; err != nil {
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, Fail("问题表查询失败: "+err.Error()))
		return
	}
	var rows []models.IssueRow
	if err := c.db.Table(table).Order("record_key").
		Offset((page - 1) * size).Limit(size).Find(&rows).Error; err != nil {
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, Fail("问题表查询失败: "+err.Error()))
		return
	}
	render.JSON(w, r, &PaginatedResponse{
		Status: 0, Msg: "获取问题表记录成功", Data: rows, Total: total, Page: page, Size: size,
	})
}

// GetScores 获取最近一次刷新的质量评分
// @Summary 获取质量评分
// @Description 返回各实体最近一次刷新的问题率和综合质量评分，优先命中缓存
// @Tags 数据质量
// @Produce json
// @Success 200 {object} APIResponse{data=[]models.DQScore}
// @Failure 404 {object} APIResponse
// @Router /quality/scores [get]
func (c *QualityController) GetScores(w http.ResponseWriter, r *http.Request) {
	if c.scoreCache != nil {
		if scores, hit := c.scoreCache.GetScores(r.Context()); hit {
			render.JSON(w, r, OK("获取质量评分成功", scores))
			return
		}
	}

	var pointer models.RefreshPointer
	if err := c.db.First(&pointer, 1).Error; err != nil {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, Fail("尚未完成任何刷新"))
		return
	}
	var scores []models.DQScore
	if err := c.db.Where("batch_id = ?", pointer.CurrentBatchID).
		Order("entity_type").Find(&scores).Error; err != nil {
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, Fail("评分查询失败: "+err.Error()))
		return
	}
	render.JSON(w, r, OK("获取质量评分成功", scores))
}

// GetScoreHistory 获取实体评分历史
// @Summary 获取实体评分历史
// @Description 按刷新批次倒序返回实体的历史评分，用于趋势分析
// @Tags 数据质量
// @Produce json
// @Param entity path string true "实体类型" Enums(customers,products,orders,order_items,payments,deliveries)
// @Param limit query int false "返回条数" default(30)
// @Success 200 {object} APIResponse{data=[]models.DQScore}
// @Failure 400 {object} APIResponse
// @Router /quality/scores/{entity} [get]
func (c *QualityController) GetScoreHistory(w http.ResponseWriter, r *http.Request) {
	entity, ok := entityParam(w, r)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 30
	}
	var scores []models.DQScore
	if err := c.db.Where("entity_type = ?", string(entity)).
		Order("created_at DESC").Limit(limit).Find(&scores).Error; err != nil {
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, Fail("评分历史查询失败: "+err.Error()))
		return
	}
	render.JSON(w, r, OK("获取评分历史成功", scores))
}
