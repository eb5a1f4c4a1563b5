package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sangkips/pharmacy-pos/internal/domain/enum"
	"github.com/sangkips/pharmacy-pos/internal/domain/repository"
	"github.com/sangkips/pharmacy-pos/pkg/apperror"
	"github.com/xuri/excelize/v2"
)

// ImportMedicineRow is one data row of an import file, as read
type ImportMedicineRow struct {
	// Row is the 1-based line or sheet row the data came from
	Row               int
	Name              string
	Manufacturer      string
	Category          string
	BatchNumber       string
	ExpiryDate        string
	Quantity          string
	Price             string
	GSTRate           string
	MinimumStockLevel string
	Description       string
}

// ImportResult contains the result of a medicine import operation
type ImportResult struct {
	TotalRows  int              `json:"total_rows"`
	Successful int              `json:"successful"`
	Failed     int              `json:"failed"`
	Errors     []ImportRowError `json:"errors,omitempty"`
}

// ImportRowError describes an error for a specific row during import
type ImportRowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ImportService bulk-loads medicines from spreadsheets
type ImportService struct {
	medicines    *MedicineService
	medicineRepo repository.MedicineRepository
}

// NewImportService creates a new import service
func NewImportService(medicines *MedicineService, medicineRepo repository.MedicineRepository) *ImportService {
	return &ImportService{medicines: medicines, medicineRepo: medicineRepo}
}

// importColumns maps accepted header spellings to row fields
var importColumns = map[string]string{
	"name":                "name",
	"medicine":            "name",
	"medicine_name":       "name",
	"manufacturer":        "manufacturer",
	"agency":              "manufacturer",
	"category":            "category",
	"batch":               "batch_number",
	"batch_number":        "batch_number",
	"batch_no":            "batch_number",
	"expiry":              "expiry_date",
	"expiry_date":         "expiry_date",
	"quantity":            "quantity",
	"qty":                 "quantity",
	"stock":               "quantity",
	"price":               "price",
	"unit_price":          "price",
	"mrp":                 "price",
	"gst":                 "gst_rate",
	"gst_rate":            "gst_rate",
	"minimum_stock":       "minimum_stock_level",
	"minimum_stock_level": "minimum_stock_level",
	"min_stock":           "minimum_stock_level",
	"description":         "description",
	"notes":               "description",
}

var requiredImportColumns = []string{"name", "manufacturer", "batch_number", "expiry_date", "quantity", "price"}

var expiryLayouts = []string{"2006-01-02", "02-01-2006", "02/01/2006", "2006/01/02", "01-02-06", time.RFC3339}

// ParseFile reads an .xlsx or .csv upload. The first row is the header.
func (s *ImportService) ParseFile(filename string, r io.Reader) ([]ImportMedicineRow, error) {
	var records []sheetRow
	var err error

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		records, err = readXLSX(r)
	case ".csv":
		records, err = readCSV(r)
	default:
		return nil, apperror.NewBadRequestError("Unsupported file type. Upload a .xlsx or .csv file")
	}
	if err != nil {
		return nil, apperror.NewBadRequestError("Could not read file: " + err.Error())
	}
	if len(records) == 0 {
		return nil, apperror.NewBadRequestError("File is empty")
	}

	index := make(map[string]int)
	for i, h := range records[0].cells {
		key := normalizeHeader(h)
		if field, ok := importColumns[key]; ok {
			if _, dup := index[field]; !dup {
				index[field] = i
			}
		}
	}

	var missing []string
	for _, col := range requiredImportColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, apperror.NewBadRequestError("Missing required columns: " + strings.Join(missing, ", "))
	}

	cell := func(record []string, field string) string {
		i, ok := index[field]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	rows := make([]ImportMedicineRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		record := rec.cells
		rows = append(rows, ImportMedicineRow{
			Row:               rec.line,
			Name:              cell(record, "name"),
			Manufacturer:      cell(record, "manufacturer"),
			Category:          cell(record, "category"),
			BatchNumber:       cell(record, "batch_number"),
			ExpiryDate:        cell(record, "expiry_date"),
			Quantity:          cell(record, "quantity"),
			Price:             cell(record, "price"),
			GSTRate:           cell(record, "gst_rate"),
			MinimumStockLevel: cell(record, "minimum_stock_level"),
			Description:       cell(record, "description"),
		})
	}
	return rows, nil
}

// ImportMedicines validates and creates medicines from parsed rows. Bad rows
// are reported and skipped; good rows are stored.
func (s *ImportService) ImportMedicines(ctx context.Context, rows []ImportMedicineRow) (*ImportResult, error) {
	result := &ImportResult{TotalRows: len(rows)}
	var rowErrors []ImportRowError

	// batch number -> row number, to catch duplicates within the file
	seenBatches := make(map[string]int)

	for i, row := range rows {
		rowNum := row.Row
		if rowNum == 0 {
			rowNum = i + 2 // row 1 is the header
		}

		input, fieldErr := row.toInput()
		if fieldErr != nil {
			rowErrors = append(rowErrors, ImportRowError{Row: rowNum, Field: fieldErr.Field, Message: fieldErr.Message})
			continue
		}

		if prevRow, exists := seenBatches[input.BatchNumber]; exists {
			rowErrors = append(rowErrors, ImportRowError{
				Row:     rowNum,
				Field:   "batch_number",
				Message: fmt.Sprintf("Duplicate batch number '%s' (same as row %d)", input.BatchNumber, prevRow),
			})
			continue
		}

		existing, err := s.medicineRepo.GetByBatchNumber(ctx, input.BatchNumber)
		if err != nil {
			rowErrors = append(rowErrors, ImportRowError{Row: rowNum, Field: "batch_number", Message: "Error checking batch number: " + err.Error()})
			continue
		}
		if existing != nil {
			rowErrors = append(rowErrors, ImportRowError{
				Row:     rowNum,
				Field:   "batch_number",
				Message: fmt.Sprintf("Batch number '%s' already exists", input.BatchNumber),
			})
			continue
		}
		seenBatches[input.BatchNumber] = rowNum

		if _, err := s.medicines.create(ctx, input, enum.MovementImport, "import"); err != nil {
			rowErrors = append(rowErrors, rowErrorFrom(rowNum, err))
			continue
		}
		result.Successful++
	}

	result.Failed = len(rowErrors)
	result.Errors = rowErrors
	return result, nil
}

func (row ImportMedicineRow) toInput() (*CreateMedicineInput, *apperror.FieldError) {
	input := &CreateMedicineInput{
		Name:         row.Name,
		Manufacturer: row.Manufacturer,
		Category:     row.Category,
		BatchNumber:  row.BatchNumber,
	}

	switch {
	case row.Name == "":
		return nil, &apperror.FieldError{Field: "name", Message: "Name is required"}
	case row.Manufacturer == "":
		return nil, &apperror.FieldError{Field: "manufacturer", Message: "Manufacturer is required"}
	case row.BatchNumber == "":
		return nil, &apperror.FieldError{Field: "batch_number", Message: "Batch number is required"}
	}

	expiry, err := parseExpiry(row.ExpiryDate)
	if err != nil {
		return nil, &apperror.FieldError{Field: "expiry_date", Message: fmt.Sprintf("Invalid expiry date '%s'", row.ExpiryDate)}
	}
	input.ExpiryDate = expiry

	qty, err := strconv.Atoi(row.Quantity)
	if err != nil {
		return nil, &apperror.FieldError{Field: "quantity", Message: fmt.Sprintf("Invalid quantity '%s'", row.Quantity)}
	}
	input.Quantity = qty

	price, err := parseNumber(row.Price)
	if err != nil {
		return nil, &apperror.FieldError{Field: "price", Message: fmt.Sprintf("Invalid price '%s'", row.Price)}
	}
	input.Price = price

	if row.GSTRate != "" {
		rate, err := parseNumber(strings.TrimSuffix(row.GSTRate, "%"))
		if err != nil {
			return nil, &apperror.FieldError{Field: "gst_rate", Message: fmt.Sprintf("Invalid GST rate '%s'", row.GSTRate)}
		}
		input.GSTRate = rate
	}

	if row.MinimumStockLevel != "" {
		level, err := strconv.Atoi(row.MinimumStockLevel)
		if err != nil {
			return nil, &apperror.FieldError{Field: "minimum_stock_level", Message: fmt.Sprintf("Invalid minimum stock level '%s'", row.MinimumStockLevel)}
		}
		input.MinimumStockLevel = &level
	}

	if row.Description != "" {
		desc := row.Description
		input.Description = &desc
	}

	return input, nil
}

func rowErrorFrom(rowNum int, err error) ImportRowError {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		if len(appErr.Errors) > 0 {
			return ImportRowError{Row: rowNum, Field: appErr.Errors[0].Field, Message: appErr.Errors[0].Message}
		}
		return ImportRowError{Row: rowNum, Message: appErr.Message}
	}
	return ImportRowError{Row: rowNum, Message: err.Error()}
}

func parseExpiry(s string) (time.Time, error) {
	for _, layout := range expiryLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	// Unformatted Excel date cells come through as serial numbers.
	if serial, err := parseNumber(s); err == nil && serial > 0 {
		return excelize.ExcelDateToTime(serial, false)
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	h = strings.NewReplacer(" ", "_", "-", "_", ".", "").Replace(h)
	return h
}

// sheetRow is a non-blank input row and the 1-based line it was read from
type sheetRow struct {
	line  int
	cells []string
}

func readXLSX(r io.Reader) ([]sheetRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}

	out := make([]sheetRow, 0, len(rows))
	for i, cells := range rows {
		if !isBlank(cells) {
			out = append(out, sheetRow{line: i + 1, cells: cells})
		}
	}
	return out, nil
}

func readCSV(r io.Reader) ([]sheetRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var out []sheetRow
	for {
		cells, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		if isBlank(cells) {
			continue
		}
		line, _ := reader.FieldPos(0)
		out = append(out, sheetRow{line: line, cells: cells})
	}
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// parseNumber parses a decimal cell. NaN and infinities are rejected since
// they cannot be stored as money or rates.
func parseNumber(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not a finite number: %q", s)
	}
	return v, nil
}
