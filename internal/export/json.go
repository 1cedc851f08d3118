package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sadopc/taskview/internal/report"
)

type jsonExport struct {
	ExportedAt string     `json:"exported_at"`
	Report     string     `json:"report,omitempty"`
	Columns    []string   `json:"columns"`
	Count      int        `json:"count"`
	Tasks      []jsonTask `json:"tasks"`
}

type jsonTask struct {
	UUID    string            `json:"uuid"`
	Tracked bool              `json:"tracked"`
	Values  map[string]string `json:"values"`
}

// ToJSON writes tbl to path as an indented JSON document.
func ToJSON(tbl report.Table, tracked map[string]bool, reportName, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create json file: %w", err)
	}
	defer f.Close()
	return WriteJSON(f, tbl, tracked, reportName)
}

func WriteJSON(w io.Writer, tbl report.Table, tracked map[string]bool, reportName string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Report:     reportName,
		Columns:    tbl.Labels,
		Count:      len(tbl.Rows),
		Tasks:      []jsonTask{},
	}
	if export.Columns == nil {
		export.Columns = []string{}
	}

	for i, row := range tbl.Rows {
		id := rowUUID(tbl, i)
		values := make(map[string]string, len(row))
		for j, v := range row {
			if j < len(tbl.Labels) {
				values[tbl.Labels[j]] = v
			}
		}
		export.Tasks = append(export.Tasks, jsonTask{UUID: id, Tracked: tracked[id], Values: values})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}
