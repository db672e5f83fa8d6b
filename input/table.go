package input

import (
	"encoding/json"

	"github.com/xraph/dialog/prompt"
)

// SelectRow returns a transform resolving a submitted key back to the row
// that produced it. It fails with dialog.ErrInvalidSelection when no row
// matches. Use it with Map.
func SelectRow[Row any](rows []Row, key func(Row) string) func(string) (Row, error) {
	return func(k string) (Row, error) {
		for _, row := range rows {
			if key(row) == k {
				return row, nil
			}
		}
		var zero Row
		return zero, invalidSelection(k)
	}
}

// Table shows rows and asks the operator to pick one. Cells are the row's
// JSON object form; the normalized value is the original row.
func Table[Row any](label string, rows []Row, key func(Row) string, columns ...prompt.Column) *Builder[Row] {
	f := field(prompt.KindTable, label)
	f.Columns = columns
	f.Rows = make([]prompt.TableRow, len(rows))
	for i, row := range rows {
		f.Rows[i] = prompt.TableRow{Key: key(row), Cells: cellsOf(row)}
	}

	pick := SelectRow(rows, key)
	b := newBuilder(f, label, func(r prompt.Response) (Row, error) {
		var zero Row
		v, err := AsSingleton(r)
		if err != nil {
			return zero, err
		}
		k, err := AsString(v)
		if err != nil {
			return zero, err
		}
		return pick(k)
	})
	return b.Format(func(row Row) []prompt.Breadcrumb {
		return []prompt.Breadcrumb{{Key: label, Value: key(row)}}
	})
}

func cellsOf(row any) map[string]any {
	data, err := json.Marshal(row)
	if err != nil {
		return nil
	}
	var cells map[string]any
	if err := json.Unmarshal(data, &cells); err != nil {
		return map[string]any{"value": row}
	}
	return cells
}
