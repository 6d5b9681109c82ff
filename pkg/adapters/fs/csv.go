package fs

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"

	"github.com/gazelib/gazelib/pkg/core"
)

// TimelineCSVOptions configures WriteTimelineCSV. Zero values take the defaults.
type TimelineCSVOptions struct {
	Delimiter rune   // default '\t'
	Namespace string // default "gazelib"
	Unit      string // default "microseconds"
}

func (o TimelineCSVOptions) withDefaults() TimelineCSVOptions {
	if o.Delimiter == 0 {
		o.Delimiter = '\t'
	}
	if o.Namespace == "" {
		o.Namespace = "gazelib"
	}
	if o.Unit == "" {
		o.Unit = "microseconds"
	}
	return o
}

func newCSVWriter(w io.Writer, delimiter rune) *csv.Writer {
	cw := csv.NewWriter(w)
	cw.Comma = delimiter
	cw.UseCRLF = false
	return cw
}

// WriteTimelineCSV writes one row per point of timeline. The first column is
// the time, followed by every stream bound to the timeline in name order.
// A stream with confidence gets a "<stream>/confidence" column right after it.
func WriteTimelineCSV(w io.Writer, c *core.Container, timeline string, opts TimelineCSVOptions) error {
	opts = opts.withDefaults()
	tl, err := c.Timeline(timeline)
	if err != nil {
		return err
	}

	header := []string{opts.Namespace + "/time/" + opts.Unit}
	var streams []core.Stream
	for _, name := range c.StreamNames() {
		s, err := c.Stream(name)
		if err != nil {
			return err
		}
		if s.Timeline != timeline {
			continue
		}
		streams = append(streams, s)
		header = append(header, name)
		if s.Confidence != nil {
			header = append(header, name+"/confidence")
		}
	}

	cw := newCSVWriter(w, opts.Delimiter)
	if err := cw.Write(header); err != nil {
		return err
	}
	row := make([]string, 0, len(header))
	for i, t := range tl {
		row = append(row[:0], strconv.FormatInt(t, 10))
		for _, s := range streams {
			row = append(row, MarshalCSVValue(s.Values[i]))
			if s.Confidence != nil {
				row = append(row, formatFloat(s.Confidence[i]))
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteEventsCSV writes one row per event carrying at least one of tags:
// start_time, end_time and a 1/0 membership column per tag.
func WriteEventsCSV(w io.Writer, c *core.Container, tags []string, delimiter rune) error {
	if delimiter == 0 {
		delimiter = '\t'
	}
	cw := newCSVWriter(w, delimiter)
	if err := cw.Write(append([]string{"start_time", "end_time"}, tags...)); err != nil {
		return err
	}
	for e := range c.IterEventsByTags(tags) {
		row := []string{
			strconv.FormatInt(e.Range.Start(), 10),
			strconv.FormatInt(e.Range.End(), 10),
		}
		for _, tag := range tags {
			if e.HasTag(tag) {
				row = append(row, "1")
			} else {
				row = append(row, "0")
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ErrNoHeader is returned when a dict list has no header row.
var ErrNoHeader = errors.New("csv has no header row")

// ReadDictList reads a delimited file into one map per row, keyed by the header.
// Rows with a different number of fields than the header are rejected.
func ReadDictList(r io.Reader, delimiter rune) ([]map[string]string, error) {
	cr := csv.NewReader(r)
	cr.Comma = delimiter
	cr.FieldsPerRecord = 0
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	var rows []map[string]string
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row %d: %w", len(rows)+1, err)
		}
		row := make(map[string]string, len(header))
		for i, key := range header {
			row[key] = record[i]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// WriteDictList writes rows under a header holding the union of their keys,
// sorted. Keys missing from a row are written as empty cells.
func WriteDictList(w io.Writer, rows []map[string]string, delimiter rune) error {
	keys := make(map[string]struct{})
	for _, row := range rows {
		for k := range row {
			keys[k] = struct{}{}
		}
	}
	header := slices.Sorted(maps.Keys(keys))

	cw := newCSVWriter(w, delimiter)
	if err := cw.Write(header); err != nil {
		return err
	}
	record := make([]string, len(header))
	for _, row := range rows {
		for i, k := range header {
			record[i] = row[k]
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalCSVValue converts a sample to a cell: empty for a missing value,
// plain text for scalars and JSON for maps and slices.
func MarshalCSVValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return formatFloat(t)
	case float32:
		return formatFloat(float64(t))
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case map[string]any, []any, map[string]string, []string:
		if b, err := json.Marshal(t); err == nil {
			return string(b)
		}
	}
	return fmt.Sprintf("%v", v)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
