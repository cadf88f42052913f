// Package export serialises report rows to CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

// Column maps a row key to its header label.
type Column struct {
	Label string
	Key   string
}

// Row is one record keyed by column key.
type Row map[string]any

// WriteCSV writes a header line of labels followed by one line per row.
// Missing and nil values are written as empty strings.
func WriteCSV(w io.Writer, columns []Column, rows []Row) error {
	writer := csv.NewWriter(w)
	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = c.Label
	}
	if err := writer.Write(header); err != nil {
		return err
	}
	record := make([]string, len(columns))
	for _, row := range rows {
		for i, c := range columns {
			record[i] = Stringify(row[c.Key])
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// Stringify renders a cell value.
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		if val.IsZero() {
			return ""
		}
		return val.Format("2006-01-02")
	case *float64:
		if val == nil {
			return ""
		}
		return Stringify(*val)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
