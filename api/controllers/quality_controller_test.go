/*
 * @module api/controllers/quality_controller_test
 * @description 数据质量控制器测试，覆盖评分查询、金表分页和参数校验
 * @architecture 测试层 - httptest + 内存sqlite
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow 测试数据写入 -> HTTP请求构造 -> 响应断言
 * @rules 未知实体类型返回400，无刷新历史返回404
 * @dependencies testing, net/http/httptest, github.com/stretchr/testify/assert
 * @refs quality_controller.go, recon_controller.go
 */

package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dataquality-service/service/models"
	"dataquality-service/service/quality"
	"dataquality-service/testutil"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQualityRouter(t *testing.T) (*chi.Mux, *testutil.TestDB) {
	tdb := testutil.NewTestDB()
	t.Cleanup(tdb.Close)

	controller := NewQualityController(tdb.DB, quality.NewCatalog(), nil)
	router := chi.NewRouter()
	router.Get("/quality/rules", controller.GetRules)
	router.Get("/quality/gold/{entity}", controller.GetGoldRecords)
	router.Get("/quality/issues/{entity}", controller.GetIssueRecords)
	router.Get("/quality/scores", controller.GetScores)
	router.Get("/quality/scores/{entity}", controller.GetScoreHistory)
	return router, tdb
}

func doRequest(router *chi.Mux, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestGetRulesCatalog(t *testing.T) {
	router, _ := newQualityRouter(t)

	w := doRequest(router, http.MethodGet, "/quality/rules")

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Status int                   `json:"status"`
		Data   map[string][]RuleInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Status)
	assert.Len(t, resp.Data, len(models.AllEntityTypes))

	names := make(map[string]bool)
	for _, info := range resp.Data["order_items"] {
		names[info.Name] = true
	}
	assert.True(t, names["fk_product_orphan"])
	assert.True(t, names["bad_quantity"])
}

func TestGetGoldRecordsPagination(t *testing.T) {
	router, tdb := newQualityRouter(t)

	for _, key := range []string{"C1", "C2", "C3"} {
		require.NoError(t, tdb.DB.Table("dim_customers_gold").Create(&models.GoldRow{
			BatchID:    "batch-1",
			EntityType: string(models.EntityCustomer),
			RecordKey:  key,
			Fields:     models.JSONB{"customer_id": key},
		}).Error)
	}

	w := doRequest(router, http.MethodGet, "/quality/gold/customers?page=1&size=2")

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Total int64            `json:"total"`
		Data  []models.GoldRow `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(3), resp.Total)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "C1", resp.Data[0].RecordKey)
	assert.Equal(t, "C2", resp.Data[1].RecordKey)
}

func TestGetGoldRecordsUnknownEntity(t *testing.T) {
	router, _ := newQualityRouter(t)

	w := doRequest(router, http.MethodGet, "/quality/gold/unknown")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetScoresWithoutRefresh(t *testing.T) {
	router, _ := newQualityRouter(t)

	w := doRequest(router, http.MethodGet, "/quality/scores")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetScoresFromPointer(t *testing.T) {
	router, tdb := newQualityRouter(t)

	require.NoError(t, tdb.DB.Create(&models.DQScore{
		BatchID: "batch-1", EntityType: "customers",
		GoldCount: 95, IssueCount: 5, IssueRate: 0.05, Score: 0.95,
	}).Error)
	require.NoError(t, tdb.DB.Create(&models.DQScore{
		BatchID: "batch-2", EntityType: "customers",
		GoldCount: 90, IssueCount: 10, IssueRate: 0.1, Score: 0.9,
	}).Error)
	require.NoError(t, tdb.DB.Create(&models.RefreshPointer{
		ID: 1, CurrentBatchID: "batch-2", UpdatedAt: time.Now(),
	}).Error)

	w := doRequest(router, http.MethodGet, "/quality/scores")

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data []models.DQScore `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	// 仅返回指针指向批次的评分
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "batch-2", resp.Data[0].BatchID)
	assert.InDelta(t, 0.9, resp.Data[0].Score, 1e-9)
}

func TestGetIssueRecordsKeepFlags(t *testing.T) {
	router, tdb := newQualityRouter(t)

	require.NoError(t, tdb.DB.Table("dq_customers_issues").Create(&models.IssueRow{
		BatchID:    "batch-1",
		EntityType: string(models.EntityCustomer),
		RecordKey:  "C2",
		Fields:     models.JSONB{"customer_id": "C2"},
		Flags:      models.JSONB{"missing_email": true, "invalid_state": false},
	}).Error)

	w := doRequest(router, http.MethodGet, "/quality/issues/customers")

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data []models.IssueRow `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, true, resp.Data[0].Flags["missing_email"])
	assert.Equal(t, false, resp.Data[0].Flags["invalid_state"])
}

func TestReconSummaryEndpoint(t *testing.T) {
	tdb := testutil.NewTestDB()
	t.Cleanup(tdb.Close)

	require.NoError(t, tdb.DB.Create(&models.ReconRecord{
		BatchID: "b1", OrderID: "O1", ItemsTotal: 100, PaymentsTotal: 100,
	}).Error)
	require.NoError(t, tdb.DB.Create(&models.ReconRecord{
		BatchID: "b1", OrderID: "O2", ItemsTotal: 100, PaymentsTotal: 80,
		Delta: -20, StatusMismatchFlag: true,
	}).Error)

	controller := NewReconController(tdb.DB)
	router := chi.NewRouter()
	router.Get("/recon/summary", controller.GetReconSummary)

	w := doRequest(router, http.MethodGet, "/recon/summary")

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data ReconSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(2), resp.Data.TotalOrders)
	assert.Equal(t, int64(1), resp.Data.OrdersWithMismatch)
}
