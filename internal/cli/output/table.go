package output

import (
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"
	"text/tabwriter"
)

// TableFormatter formats data as an aligned table.
type TableFormatter struct {
	NoHeaders bool
}

// Format formats data as a table. Supported: *Table, Table, structs,
// maps and slices of scalars. Anything else is printed with %v.
func (f *TableFormatter) Format(w io.Writer, data any) error {
	if data == nil {
		return nil
	}
	switch t := data.(type) {
	case *Table:
		return t.RenderWithOptions(w, f.NoHeaders)
	case Table:
		return t.RenderWithOptions(w, f.NoHeaders)
	case fmt.Stringer:
		_, err := fmt.Fprintln(w, t.String())
		return err
	}

	table, ok := toTable(reflect.ValueOf(data))
	if !ok {
		_, err := fmt.Fprintf(w, "%v\n", data)
		return err
	}
	return table.RenderWithOptions(w, f.NoHeaders)
}

func toTable(v reflect.Value) (*Table, bool) {
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Struct:
		t := &Table{Headers: []string{"FIELD", "VALUE"}}
		typ := v.Type()
		for i := 0; i < typ.NumField(); i++ {
			field := typ.Field(i)
			if !field.IsExported() {
				continue
			}
			name := fieldName(field)
			if name == "-" {
				continue
			}
			t.AddRow(name, formatValue(v.Field(i)))
		}
		return t, true
	case reflect.Map:
		t := &Table{Headers: []string{"KEY", "VALUE"}}
		keys := v.MapKeys()
		sort.Slice(keys, func(i, j int) bool {
			return formatValue(keys[i]) < formatValue(keys[j])
		})
		for _, k := range keys {
			t.AddRow(formatValue(k), formatValue(v.MapIndex(k)))
		}
		return t, true
	case reflect.Slice, reflect.Array:
		t := &Table{Headers: []string{"#", "VALUE"}}
		for i := 0; i < v.Len(); i++ {
			t.AddRow(fmt.Sprint(i+1), formatValue(v.Index(i)))
		}
		return t, true
	default:
		return nil, false
	}
}

// fieldName returns the json tag name of a field, or its Go name.
func fieldName(f reflect.StructField) string {
	if tag := f.Tag.Get("json"); tag != "" {
		if name, _, _ := strings.Cut(tag, ","); name != "" {
			return name
		}
	}
	return f.Name
}

func formatValue(v reflect.Value) string {
	if !v.IsValid() {
		return ""
	}
	if v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.String:
		if v.Len() == 0 {
			return "-"
		}
		return v.String()
	case reflect.Float32, reflect.Float64:
		return fmt.Sprintf("%.2f", v.Float())
	case reflect.Slice, reflect.Array:
		return fmt.Sprintf("[%d items]", v.Len())
	case reflect.Map:
		return fmt.Sprintf("{%d keys}", v.Len())
	default:
		return fmt.Sprint(v.Interface())
	}
}

// Table represents tabular data.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Render renders the table to the writer.
func (t *Table) Render(w io.Writer) error {
	return t.RenderWithOptions(w, false)
}

// RenderWithOptions renders the table with options.
func (t *Table) RenderWithOptions(w io.Writer, noHeaders bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if !noHeaders && len(t.Headers) > 0 {
		fmt.Fprintln(tw, strings.Join(t.Headers, "\t"))
	}
	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// AddRow adds a row to the table.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// SetHeaders sets the table headers.
func (t *Table) SetHeaders(headers ...string) {
	t.Headers = headers
}
