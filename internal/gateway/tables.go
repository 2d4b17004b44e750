// Package gateway implements file ingestion for the reconciliation engine:
// per-category workbooks or CSV files are decoded into the parsed-table
// contract the core consumes. The core itself never touches file bytes.
package gateway

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Akshit7103/Card-Reco-Tool-V2/internal/domain"
)

// WorkbookRepository implements the usecase TableRepository for .xlsx and
// .csv files on disk.
type WorkbookRepository struct{}

// NewWorkbookRepository creates a new repository instance.
func NewWorkbookRepository() *WorkbookRepository {
	return &WorkbookRepository{}
}

// GetTables reads every supplied category file into a parsed table. Paths
// are processed in a fixed category order so the output is deterministic.
func (r *WorkbookRepository) GetTables(ctx context.Context, paths map[domain.Category]string) ([]domain.Table, error) {
	categories := make([]domain.Category, 0, len(paths))
	for c := range paths {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })

	var tables []domain.Table
	for _, category := range categories {
		path := paths[category]
		table, err := readTable(category, path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s file %s: %w", category, path, err)
		}
		tables = append(tables, table)
	}
	return tables, nil
}

func readTable(category domain.Category, path string) (domain.Table, error) {
	var rows [][]string
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xls":
		rows, err = readWorkbookRows(path)
	case ".csv":
		rows, err = readCSVRows(path)
	default:
		err = fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}
	if err != nil {
		return domain.Table{}, err
	}
	if len(rows) == 0 {
		return domain.Table{}, fmt.Errorf("file has no header row")
	}
	return domain.Table{
		Category: category,
		Headers:  rows[0],
		Rows:     rows[1:],
		Source:   filepath.Base(path),
	}, nil
}

// readWorkbookRows decodes the first sheet of an Excel workbook.
func readWorkbookRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func readCSVRows(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading record: %w", err)
		}
		rows = append(rows, record)
	}
	return rows, nil
}
