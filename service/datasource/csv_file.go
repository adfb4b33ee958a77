/*
 * @module service/datasource/csv_file
 * @description CSV文件数据源，从暂存目录按实体读取CSV文件并解析为记录
 * @architecture 适配器模式 - 文件暂存区读取
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow 打开{dir}/{entity}.csv -> 表头解析 -> 逐行转换为记录
 * @rules 文件不存在视为该实体无数据；空白单元格解析为nil以便完整性规则识别；支持GBK编码转换
 * @dependencies encoding/csv, golang.org/x/text
 * @refs interface.go
 */

package datasource

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dataquality-service/service/models"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// CSVFileSource CSV文件数据源
type CSVFileSource struct {
	dir      string
	encoding string // utf-8 或 gbk
}

// NewCSVFileSource 创建CSV文件数据源
func NewCSVFileSource(dir, encoding string) *CSVFileSource {
	if encoding == "" {
		encoding = "utf-8"
	}
	return &CSVFileSource{dir: dir, encoding: strings.ToLower(encoding)}
}

// Name 数据源类型名称
func (s *CSVFileSource) Name() string {
	return "csv_file"
}

// Fetch 读取实体对应的CSV文件并解析为记录
func (s *CSVFileSource) Fetch(ctx context.Context, entity models.EntityType) ([]*models.Record, error) {
	path := filepath.Join(s.dir, string(entity)+".csv")
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Debug("实体暂存文件不存在，按无数据处理", "entity", entity, "path", path)
			return []*models.Record{}, nil
		}
		return nil, fmt.Errorf("打开暂存文件失败: %w", err)
	}
	defer file.Close()

	var reader io.Reader = file
	if s.encoding == "gbk" {
		reader = transform.NewReader(file, simplifiedchinese.GBK.NewDecoder())
	}

	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true

	header, err := csvReader.Read()
	if err == io.EOF {
		return []*models.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("读取CSV表头失败: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	records := make([]*models.Record, 0)
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		row, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("读取CSV行失败: %w", err)
		}

		fields := make(map[string]interface{}, len(header))
		for i, name := range header {
			if i >= len(row) {
				break
			}
			value := strings.TrimSpace(row[i])
			if value == "" {
				// 空白单元格记为nil，交给完整性规则识别
				fields[name] = nil
			} else {
				fields[name] = value
			}
		}
		records = append(records, models.NewRecord(fields))
	}

	slog.Info("CSV暂存文件读取完成", "entity", entity, "records", len(records))
	return records, nil
}
