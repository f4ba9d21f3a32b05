package agent

import "fmt"

// MaxTableRows caps the rows kept per table.
const MaxTableRows = 30

// Table is a structured result set returned alongside the agent's text.
type Table struct {
	Title   string   `json:"title"`
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// ExtractTables collects the "table" content items of an agent response.
// Tables without columns or rows are skipped.
func ExtractTables(payload any) []Table {
	m, ok := payload.(map[string]any)
	if !ok {
		return nil
	}
	items, _ := m["content"].([]any)

	var tables []Table
	for _, raw := range items {
		item, ok := raw.(map[string]any)
		if !ok || item["type"] != "table" {
			continue
		}
		if table, ok := parseTable(asMap(item["table"])); ok {
			tables = append(tables, table)
		}
	}
	return tables
}

func parseTable(block map[string]any) (Table, bool) {
	title, _ := block["title"].(string)
	if title == "" {
		title = "Details"
	}
	resultSet := asMap(block["result_set"])
	meta := asMap(resultSet["resultSetMetaData"])
	rowType, _ := meta["rowType"].([]any)

	columns := make([]string, 0, len(rowType))
	for i, raw := range rowType {
		name, ok := asMap(raw)["name"]
		if !ok {
			columns = append(columns, fmt.Sprintf("col_%d", i))
			continue
		}
		columns = append(columns, fmt.Sprint(name))
	}

	data, _ := resultSet["data"].([]any)
	if len(columns) == 0 || len(data) == 0 {
		return Table{}, false
	}
	if len(data) > MaxTableRows {
		data = data[:MaxTableRows]
	}

	rows := make([][]any, 0, len(data))
	for _, raw := range data {
		cells, _ := raw.([]any)
		if len(cells) > len(columns) {
			cells = cells[:len(columns)]
		}
		rows = append(rows, cells)
	}
	return Table{Title: title, Columns: columns, Rows: rows}, true
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}
