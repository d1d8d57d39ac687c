package dsl

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/olekukonko/tablewriter"
)

// DisplayConfig controls how Frames are formatted when printed.
type DisplayConfig struct {
	// MaxRows is the maximum number of rows to display.
	// If the Frame has more rows, it shows head and tail rows with "..." in between.
	// Default: 10 (5 head + 5 tail)
	MaxRows int

	// MaxColWidth is the maximum width for column content.
	// Values longer than this are truncated with "...".
	// Default: 25
	MaxColWidth int

	// FloatPrecision is the number of decimal places for float values.
	// Default: 4
	FloatPrecision int

	// ShowDTypes controls whether to display data types under column names.
	// Default: true
	ShowDTypes bool

	// ShowShape controls whether to display the shape (rows, columns) header.
	// Default: true
	ShowShape bool
}

// DefaultDisplayConfig returns the default display configuration.
func DefaultDisplayConfig() DisplayConfig {
	return DisplayConfig{
		MaxRows:        10,
		MaxColWidth:    25,
		FloatPrecision: 4,
		ShowDTypes:     true,
		ShowShape:      true,
	}
}

// Global display configuration with mutex for thread safety
var (
	globalDisplayConfig = DefaultDisplayConfig()
	displayConfigMu     sync.RWMutex
)

// SetDisplayConfig sets the global display configuration.
func SetDisplayConfig(cfg DisplayConfig) {
	displayConfigMu.Lock()
	defer displayConfigMu.Unlock()
	globalDisplayConfig = cfg
}

// GetDisplayConfig returns the current global display configuration.
func GetDisplayConfig() DisplayConfig {
	displayConfigMu.RLock()
	defer displayConfigMu.RUnlock()
	return globalDisplayConfig
}

// formatDisplayValue formats a value for display with the given configuration.
func formatDisplayValue(val interface{}, cfg DisplayConfig) string {
	var s string
	switch v := val.(type) {
	case nil:
		s = "null"
	case float64:
		s = fmt.Sprintf("%.*f", cfg.FloatPrecision, v)
	case float32:
		s = fmt.Sprintf("%.*f", cfg.FloatPrecision, v)
	case string:
		s = v
	default:
		s = fmt.Sprintf("%v", v)
	}
	return s
}

// formatCell renders row i of col, expanding struct rows in field order
func formatCell(col *Column, i int, cfg DisplayConfig) string {
	if col.DType() == Struct && !col.IsNull(i) {
		fields := col.StructFields()
		parts := make([]string, len(fields))
		for k, f := range fields {
			parts[k] = f.Name() + ": " + formatCell(f, i, cfg)
		}
		return truncate("{"+strings.Join(parts, ", ")+"}", cfg.MaxColWidth)
	}
	return truncate(formatDisplayValue(col.Get(i), cfg), cfg.MaxColWidth)
}

func truncate(s string, width int) string {
	if width > 3 && len(s) > width {
		return s[:width-3] + "..."
	}
	return s
}

// displayRows picks the row indices to show; -1 marks the elided middle
func displayRows(height, maxRows int) []int {
	if maxRows <= 0 || height <= maxRows {
		rows := make([]int, height)
		for i := range rows {
			rows[i] = i
		}
		return rows
	}
	head := maxRows / 2
	tail := maxRows - head
	rows := make([]int, 0, maxRows+1)
	for i := 0; i < head; i++ {
		rows = append(rows, i)
	}
	rows = append(rows, -1)
	for i := height - tail; i < height; i++ {
		rows = append(rows, i)
	}
	return rows
}

// ============================================================================
// Frame Display
// ============================================================================

// Render writes the frame as a table to w using the given configuration.
func (f *Frame) Render(w io.Writer, cfg DisplayConfig) {
	if cfg.ShowShape {
		fmt.Fprintf(w, "shape: (%d, %d)\n", f.Height(), f.Width())
	}
	if f.Width() == 0 {
		fmt.Fprintln(w, "Frame(empty)")
		return
	}

	cols := f.Columns()
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.Name()
		if cfg.ShowDTypes {
			header[i] += "\n" + c.Field().TypeString()
		}
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	for _, row := range displayRows(f.Height(), cfg.MaxRows) {
		cells := make([]string, len(cols))
		for i, c := range cols {
			if row < 0 {
				cells[i] = "..."
				continue
			}
			cells[i] = formatCell(c, row, cfg)
		}
		table.Append(cells)
	}
	table.Render()
}

// StringWithConfig formats the Frame using the provided configuration.
func (f *Frame) StringWithConfig(cfg DisplayConfig) string {
	var sb strings.Builder
	f.Render(&sb, cfg)
	return sb.String()
}

// String formats the Frame using the global display configuration.
func (f *Frame) String() string {
	return f.StringWithConfig(GetDisplayConfig())
}
