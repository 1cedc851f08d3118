package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/sadopc/taskview/internal/report"
)

// ToCSV writes tbl to path. tracked holds the uuids Timewarrior is tracking.
func ToCSV(tbl report.Table, tracked map[string]bool, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()
	return WriteCSV(f, tbl, tracked)
}

// WriteCSV writes a header row of labels followed by one row per task. Two
// trailing columns carry the task uuid and whether it is tracked.
func WriteCSV(out io.Writer, tbl report.Table, tracked map[string]bool) error {
	w := csv.NewWriter(out)

	header := append(append([]string{}, tbl.Labels...), "UUID", "Tracked")
	if err := w.Write(header); err != nil {
		return err
	}

	for i, row := range tbl.Rows {
		id := rowUUID(tbl, i)
		rec := append(append([]string{}, row...), id, fmt.Sprintf("%t", tracked[id]))
		if err := w.Write(rec); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func rowUUID(tbl report.Table, i int) string {
	if i < len(tbl.UUIDs) {
		return tbl.UUIDs[i].String()
	}
	return ""
}
