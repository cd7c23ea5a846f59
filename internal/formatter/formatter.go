// package formatter renders places, locations, and schedules as table text, CSV, Markdown, or JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/desertthunder/tripmate/internal/models"
)

// Format is an output encoding accepted by the Render functions.
type Format string

const (
	Table    Format = "table"
	CSV      Format = "csv"
	Markdown Format = "markdown"
	JSON     Format = "json"
)

// Formats lists every supported format.
var Formats = []Format{Table, CSV, Markdown, JSON}

// ParseFormat validates a user-supplied format name. Empty means [Table].
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return Table, nil
	}
	f := Format(strings.ToLower(s))
	if !slices.Contains(Formats, f) {
		return "", fmt.Errorf("unknown format %q (want one of table, csv, markdown, json)", s)
	}
	return f, nil
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func renderTable(headers []string, rows [][]string) []byte {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return []byte(t.Render() + "\n")
}

func renderCSV(headers []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// ToJSON marshals v, indented when pretty is set.
func ToJSON(v any, pretty bool) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return append(data, '\n'), nil
}

func placeRow(p models.Place, liked bool) []string {
	mark := ""
	if liked {
		mark = "♥"
	}
	return []string{
		strconv.Itoa(p.ID),
		p.Name,
		p.Category,
		strconv.FormatFloat(p.Rating, 'f', 1, 64),
		strings.Join(p.Tags, ", "),
		mark,
	}
}

// RenderPlaces renders places, marking those whose id appears in liked.
func RenderPlaces(format Format, places []models.Place, liked []int) ([]byte, error) {
	if format == JSON {
		return ToJSON(places, true)
	}

	if format == Markdown {
		var buf bytes.Buffer
		buf.WriteString("# Places\n\n")
		buf.WriteString(fmt.Sprintf("**Count**: %d\n\n", len(places)))
		for i, p := range places {
			heart := ""
			if slices.Contains(liked, p.ID) {
				heart = " ♥"
			}
			buf.WriteString(fmt.Sprintf("%d. **%s**%s (%s, %.1f)", i+1, p.Name, heart, p.Category, p.Rating))
			if p.Address != "" {
				buf.WriteString(fmt.Sprintf(" - %s", p.Address))
			}
			buf.WriteString("\n")
			if p.Description != "" {
				buf.WriteString(fmt.Sprintf("   %s\n", p.Description))
			}
		}
		return buf.Bytes(), nil
	}

	headers := []string{"ID", "Name", "Category", "Rating", "Tags", "Liked"}
	rows := make([][]string, 0, len(places))
	for _, p := range places {
		rows = append(rows, placeRow(p, slices.Contains(liked, p.ID)))
	}

	if format == CSV {
		return renderCSV(headers, rows)
	}
	return renderTable(headers, rows), nil
}

// RenderLocations renders coordinate entries.
func RenderLocations(format Format, locations []models.Location) ([]byte, error) {
	if format == JSON {
		return ToJSON(locations, true)
	}

	headers := []string{"ID", "Place", "Name", "Lat", "Lng"}
	rows := make([][]string, 0, len(locations))
	for _, l := range locations {
		rows = append(rows, []string{
			strconv.Itoa(l.ID),
			strconv.Itoa(l.PlaceID),
			l.Name,
			strconv.FormatFloat(l.Lat, 'f', 4, 64),
			strconv.FormatFloat(l.Lng, 'f', 4, 64),
		})
	}

	switch format {
	case CSV:
		return renderCSV(headers, rows)
	case Markdown:
		var buf bytes.Buffer
		buf.WriteString("# Locations\n\n")
		buf.WriteString("| " + strings.Join(headers, " | ") + " |\n")
		buf.WriteString(strings.Repeat("| --- ", len(headers)) + "|\n")
		for _, row := range rows {
			buf.WriteString("| " + strings.Join(row, " | ") + " |\n")
		}
		return buf.Bytes(), nil
	default:
		return renderTable(headers, rows), nil
	}
}

// scheduleKeys returns the union of keys across entries, "title" first and the rest sorted.
func scheduleKeys(entries []models.ScheduleEntry) []string {
	seen := map[string]bool{}
	for _, e := range entries {
		for k := range e {
			seen[k] = true
		}
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		if k != "title" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	if seen["title"] {
		keys = append([]string{"title"}, keys...)
	}
	return keys
}

func cell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case map[string]any, []any:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(data)
	default:
		return fmt.Sprint(val)
	}
}

// RenderSchedules renders schedule entries. Entries are opaque, so columns are the union of their keys.
func RenderSchedules(format Format, entries []models.ScheduleEntry) ([]byte, error) {
	if format == JSON {
		if entries == nil {
			entries = []models.ScheduleEntry{}
		}
		return ToJSON(entries, true)
	}

	keys := scheduleKeys(entries)
	headers := append([]string{"#"}, keys...)
	rows := make([][]string, 0, len(entries))
	for i, e := range entries {
		row := []string{strconv.Itoa(i + 1)}
		for _, k := range keys {
			row = append(row, cell(e[k]))
		}
		rows = append(rows, row)
	}

	switch format {
	case CSV:
		return renderCSV(headers, rows)
	case Markdown:
		var buf bytes.Buffer
		buf.WriteString("# Schedules\n\n")
		buf.WriteString(fmt.Sprintf("**Entries**: %d\n\n", len(entries)))
		for i, e := range entries {
			title := e.Title()
			if title == "" {
				title = fmt.Sprintf("Entry %d", i+1)
			}
			buf.WriteString(fmt.Sprintf("## %s\n\n", title))
			for _, k := range keys {
				if k == "title" {
					continue
				}
				if v, ok := e[k]; ok {
					buf.WriteString(fmt.Sprintf("- **%s**: %s\n", k, cell(v)))
				}
			}
			buf.WriteString("\n")
		}
		return buf.Bytes(), nil
	default:
		return renderTable(headers, rows), nil
	}
}

// WriteFile writes data to path, creating parent directories as needed.
func WriteFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
