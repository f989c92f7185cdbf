package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

// render writes a decoded response document in the selected format.
func (a *app) render(doc any) error {
	switch a.output {
	case outputJSON:
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case outputYAML:
		out, err := yaml.Marshal(doc)
		if err != nil {
			return err
		}
		_, err = a.stdout.Write(out)
		return err
	default:
		header, rows, ok := tabulate(doc)
		if !ok {
			// nothing list shaped, show the document as it is
			enc := json.NewEncoder(a.stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(doc)
		}
		renderTable(a.stdout, header, rows)
		return nil
	}
}

func renderTable(w io.Writer, header []string, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader(header)
	table.AppendBulk(rows)
	table.Render()
}

// tabulate turns a list document such as
// {"address_objects": [{"ipv4": {"name": "web", ...}}]} or
// {"service_objects": [{"name": "HTTPS", ...}]} into table rows. Entries
// wrapped in an address kind get a KIND column.
func tabulate(doc any) ([]string, [][]string, bool) {
	top, ok := doc.(map[string]any)
	if !ok {
		return nil, nil, false
	}

	var list []any
	for _, key := range sortedKeys(top) {
		if l, ok := top[key].([]any); ok {
			list = l
			break
		}
	}
	if list == nil {
		return nil, nil, false
	}

	withKind := false
	rows := make([][]string, 0, len(list))
	for _, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		kind := ""
		if _, named := obj["name"]; !named && len(obj) == 1 {
			for k, v := range obj {
				if inner, ok := v.(map[string]any); ok {
					kind, obj = k, inner
					withKind = true
				}
			}
		}
		rows = append(rows, []string{fmt.Sprint(obj["name"]), kind, attributes(obj)})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i][0] < rows[j][0] })

	if !withKind {
		for i := range rows {
			rows[i] = []string{rows[i][0], rows[i][2]}
		}
		return []string{"Name", "Attributes"}, rows, true
	}
	return []string{"Name", "Kind", "Attributes"}, rows, true
}

// attributes renders every field but the name as key=value, nested values
// as compact JSON.
func attributes(obj map[string]any) string {
	parts := make([]string, 0, len(obj))
	for _, k := range sortedKeys(obj) {
		if k == "name" {
			continue
		}
		var v string
		switch t := obj[k].(type) {
		case map[string]any, []any:
			raw, _ := json.Marshal(t)
			v = string(raw)
		default:
			v = fmt.Sprint(t)
		}
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, " ")
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
