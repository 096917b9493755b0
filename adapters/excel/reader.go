package excel

import (
	"encoding/csv"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"gomiss/domain/frame"
)

// DataReader loads Excel and CSV files into a frame
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// NewDataReader creates a reader that handles both Excel and CSV files
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType}
}

// Read loads the file into a frame. The first row is the header; a
// column becomes numeric when every observed cell parses as a number,
// and a label column otherwise. Blank and NA-style cells are missing.
func (r *DataReader) Read() (*frame.Frame, error) {
	log.Printf("[DataReader] Reading %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	var rows [][]string
	var err error
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	case "xlsx":
		rows, err = r.readExcelRows()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
	if err != nil {
		return nil, err
	}

	if len(rows) < 2 {
		return nil, fmt.Errorf("file must have at least a header row and one data row")
	}

	return buildFrame(rows[0], rows[1:])
}

func (r *DataReader) readExcelRows() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	log.Printf("[DataReader] Read %d rows from sheet %q", len(rows), sheet)
	return rows, nil
}

func (r *DataReader) readCSVRows() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	log.Printf("[DataReader] Read %d rows from CSV", len(rows))
	return rows, nil
}

func buildFrame(header []string, records [][]string) (*frame.Frame, error) {
	f := frame.New(len(records))

	for colIdx, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			name = fmt.Sprintf("column_%d", colIdx+1)
		}

		cells := make([]string, len(records))
		for rowIdx, record := range records {
			if colIdx < len(record) {
				cells[rowIdx] = strings.TrimSpace(record[colIdx])
			}
		}

		if numeric, ok := tryNumeric(cells); ok {
			if err := f.AddNumeric(name, numeric); err != nil {
				return nil, fmt.Errorf("failed to add column %q: %w", name, err)
			}
			continue
		}

		labels := make([]string, len(cells))
		for i, c := range cells {
			if !isMissingToken(c) {
				labels[i] = c
			}
		}
		if err := f.AddLabels(name, labels); err != nil {
			return nil, fmt.Errorf("failed to add column %q: %w", name, err)
		}
	}

	return f, nil
}

// tryNumeric parses a column as numeric; ok is false as soon as any
// observed cell fails to parse.
func tryNumeric(cells []string) ([]float64, bool) {
	out := make([]float64, len(cells))
	observed := 0
	for i, c := range cells {
		if isMissingToken(c) {
			out[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(c, 64)
		if err != nil {
			return nil, false
		}
		out[i] = v
		observed++
	}
	// An all-missing column carries no type evidence; keep it numeric
	return out, observed > 0 || len(cells) == 0 || allMissing(cells)
}

func allMissing(cells []string) bool {
	for _, c := range cells {
		if !isMissingToken(c) {
			return false
		}
	}
	return true
}

func isMissingToken(cell string) bool {
	switch strings.ToLower(cell) {
	case "", "na", "n/a", "nan", "null", "none":
		return true
	}
	return false
}
