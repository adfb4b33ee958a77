/*
 * @module service/datasource/csv_file_test
 * @description CSV文件数据源测试，覆盖表头解析、空白单元格和缺失文件处理
 * @architecture 测试层
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow 临时CSV写入 -> Fetch解析 -> 记录字段验证
 * @rules 文件不存在按无数据处理，空白单元格解析为nil
 * @dependencies testing, github.com/stretchr/testify/assert
 * @refs csv_file.go
 */

package datasource

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"dataquality-service/service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeStagingFile(t *testing.T, dir, name, content string) {
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestCSVFetchParsesRecords(t *testing.T) {
	dir := t.TempDir()
	writeStagingFile(t, dir, "customers.csv",
		"customer_id,email,state,signup_date\n"+
			"C1,c1@example.com,CA,2024-01-01\n"+
			"C2, c2@example.com ,NY,2024-02-01\n")

	source := NewCSVFileSource(dir, "utf-8")
	records, err := source.Fetch(context.Background(), models.EntityCustomer)

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "C1", records[0].StringField("customer_id"))
	assert.Equal(t, "c1@example.com", records[0].StringField("email"))
	// 单元格两侧空白被裁剪
	assert.Equal(t, "c2@example.com", records[1].StringField("email"))
	assert.Equal(t, "NY", records[1].StringField("state"))
}

func TestCSVFetchBlankCellBecomesNil(t *testing.T) {
	dir := t.TempDir()
	writeStagingFile(t, dir, "customers.csv",
		"customer_id,email,state,signup_date\n"+
			"C1,,CA,2024-01-01\n")

	source := NewCSVFileSource(dir, "utf-8")
	records, err := source.Fetch(context.Background(), models.EntityCustomer)

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.False(t, records[0].HasField("email"))
	assert.True(t, records[0].HasField("customer_id"))
}

func TestCSVFetchMissingFile(t *testing.T) {
	source := NewCSVFileSource(t.TempDir(), "utf-8")

	records, err := source.Fetch(context.Background(), models.EntityOrder)

	assert.NoError(t, err)
	assert.Empty(t, records)
}

func TestCSVFetchEmptyFile(t *testing.T) {
	dir := t.TempDir()
	writeStagingFile(t, dir, "orders.csv", "")

	source := NewCSVFileSource(dir, "utf-8")
	records, err := source.Fetch(context.Background(), models.EntityOrder)

	assert.NoError(t, err)
	assert.Empty(t, records)
}

func TestCSVFetchHeaderOnly(t *testing.T) {
	dir := t.TempDir()
	writeStagingFile(t, dir, "payments.csv", "payment_id,order_id,amount,status,payment_datetime\n")

	source := NewCSVFileSource(dir, "utf-8")
	records, err := source.Fetch(context.Background(), models.EntityPayment)

	assert.NoError(t, err)
	assert.Empty(t, records)
}

func TestRegistryOverride(t *testing.T) {
	defaultSource := NewCSVFileSource(t.TempDir(), "utf-8")
	override := NewCSVFileSource(t.TempDir(), "gbk")

	registry := NewRegistry(defaultSource)
	registry.Override(models.EntityDelivery, override)

	assert.Equal(t, defaultSource, registry.SourceFor(models.EntityCustomer))
	assert.Equal(t, override, registry.SourceFor(models.EntityDelivery))
}
