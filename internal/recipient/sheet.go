package recipient

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var ErrUnsupportedFile = errors.New("unsupported file type, expected .xlsx or .csv")

// ParseSheet 解析上传的表格：取第一个工作表，首行为表头，之后每行取第一个非空单元格
func ParseSheet(filename string, r io.Reader) (Result, error) {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		rows, err = readExcel(r)
	case ".csv":
		rows, err = readCSV(r)
	default:
		return Result{}, ErrUnsupportedFile
	}
	if err != nil {
		return Result{}, fmt.Errorf("parse %s: %w", filename, err)
	}

	tokens := make([]string, 0, len(rows))
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if cell := firstCell(row); cell != "" {
			tokens = append(tokens, cell)
		}
	}
	return filter(tokens)
}

func readExcel(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	return f.GetRows(sheets[0])
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	return reader.ReadAll()
}

func firstCell(row []string) string {
	for _, cell := range row {
		if cell = strings.TrimSpace(cell); cell != "" {
			return cell
		}
	}
	return ""
}
