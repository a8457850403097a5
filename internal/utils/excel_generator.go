package utils

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"neotrack/internal/repository"
)

// CreateExcelFile выгружает табличный результат каталога в xlsx. Имена
// запросов длиннее лимита на имя листа, поэтому лист фиксированный, а имя
// запроса уходит в первую строку.
func CreateExcelFile(filepath string, queryName string, result *repository.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Results"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return err
	}

	f.SetCellValue(sheet, "A1", queryName)
	if titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 12},
	}); err == nil {
		f.SetCellStyle(sheet, "A1", "A1", titleStyle)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	for i, column := range result.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		f.SetCellValue(sheet, cell, column)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	numberStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: strPtr("0.00")})
	if err != nil {
		return err
	}

	for rowIdx, row := range result.Rows {
		for colIdx, value := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+3)
			f.SetCellValue(sheet, cell, value)
			if _, ok := value.(float64); ok {
				f.SetCellStyle(sheet, cell, cell, numberStyle)
			}
		}
	}

	for i := 1; i <= len(result.Columns); i++ {
		colName, _ := excelize.ColumnNumberToName(i)
		f.SetColWidth(sheet, colName, colName, 24)
	}

	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("delete default sheet: %w", err)
	}

	return f.SaveAs(filepath)
}

func strPtr(s string) *string {
	return &s
}
