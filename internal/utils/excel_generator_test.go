package utils_test

import (
	"path/filepath"
	"testing"

	"neotrack/internal/repository"
	"neotrack/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestCreateExcelFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.xlsx")

	result := &repository.Result{
		Columns: []string{"name", "miss_distance_lunar"},
		Rows: [][]interface{}{
			{"(2024 AA)", 0.5},
			{"(2024 BB)", 2.0},
		},
	}

	require.NoError(t, utils.CreateExcelFile(path, "Asteroids closer than Moon", result))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Results"}, f.GetSheetList())

	title, err := f.GetCellValue("Results", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Asteroids closer than Moon", title)

	header, err := f.GetCellValue("Results", "B2")
	require.NoError(t, err)
	assert.Equal(t, "miss_distance_lunar", header)

	value, err := f.GetCellValue("Results", "A3")
	require.NoError(t, err)
	assert.Equal(t, "(2024 AA)", value)

	// Заголовок должен получить стиль с заливкой, а не дефолтный.
	headerStyle, err := f.GetCellStyle("Results", "A2")
	require.NoError(t, err)
	assert.NotZero(t, headerStyle)
}
