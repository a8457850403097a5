package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"neotrack/internal/models"
)

// WriteArchive сохраняет собранные записи в промежуточный JSON-артефакт.
// Файл пишется один раз после стадии fetch, в том числе при частичном сборе.
func WriteArchive(path string, records []models.NEORecord) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create archive dir: %w", err)
		}
	}

	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write archive: %w", err)
	}
	return nil
}

// ReadArchive читает артефакт обратно для стадии load.
func ReadArchive(path string) ([]models.NEORecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}

	var records []models.NEORecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("unmarshal archive: %w", err)
	}
	return records, nil
}
