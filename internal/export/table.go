package export

import (
	"bytes"
	"cmp"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"slices"
	"strconv"

	"musictaste/internal/fileutil"
)

// Number is a table value type.
type Number interface {
	~int | ~float64
}

// Row is one table line.
type Row[K cmp.Ordered, V Number] struct {
	Key   K
	Value V
}

// SortedRows orders rows by key, or by value descending then key when
// byValue is set.
func SortedRows[K cmp.Ordered, V Number](values map[K]V, byValue bool) []Row[K, V] {
	rows := make([]Row[K, V], 0, len(values))
	for key, value := range values {
		rows = append(rows, Row[K, V]{Key: key, Value: value})
	}
	slices.SortFunc(rows, func(a, b Row[K, V]) int {
		if byValue {
			if c := cmp.Compare(b.Value, a.Value); c != 0 {
				return c
			}
		}
		return cmp.Compare(a.Key, b.Key)
	})
	return rows
}

// WriteTable writes values to dir/filename as tab-separated text.
func WriteTable[K cmp.Ordered, V Number](dir, filename, keyColumn, valueColumn string, values map[K]V, byValue bool) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = '\t'
	if err := w.Write([]string{keyColumn, valueColumn}); err != nil {
		return "", fmt.Errorf("write %s header: %w", filename, err)
	}
	for _, row := range SortedRows(values, byValue) {
		if err := w.Write([]string{formatCell(row.Key), formatCell(row.Value)}); err != nil {
			return "", fmt.Errorf("write %s row: %w", filename, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("write %s: %w", filename, err)
	}

	path := filepath.Join(dir, filename)
	if err := fileutil.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", filename, err)
	}
	return path, nil
}

func formatCell(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
