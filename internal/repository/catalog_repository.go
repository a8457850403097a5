package repository

import (
	"context"

	"neotrack/internal/catalog"

	"gorm.io/gorm"
)

// Result — табличный результат запроса каталога как он уходит на рендер.
type Result struct {
	Columns []string        `json:"columns"`
	Rows    [][]interface{} `json:"rows"`
}

type CatalogRepository interface {
	Run(ctx context.Context, query catalog.Query) (*Result, error)
}

type catalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

// Run выполняет параметризованный запрос и сканирует строки без привязки к
// конкретной проекции: у каждого запроса каталога свой набор колонок.
func (r *catalogRepository) Run(ctx context.Context, query catalog.Query) (*Result, error) {
	rows, err := r.db.WithContext(ctx).Raw(query.SQL, query.Args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := &Result{Columns: columns, Rows: [][]interface{}{}}

	for rows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}

		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}

		// Байтовые колонки приводим к строкам, иначе JSON отдаст base64.
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}

		result.Rows = append(result.Rows, values)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
