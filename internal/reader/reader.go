package reader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/vesselperf/vesselperf/pkg/types"
)

const (
	fieldSep   = ";"
	maxLineLen = 1 << 20
)

// timestampLayouts are tried in order. Layouts without a zone are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// Parse errors returned by ParseLine. They are counted, never fatal.
var (
	ErrMalformed    = errors.New("malformed line")
	ErrBadTimestamp = errors.New("unparseable timestamp")
	ErrBadValue     = errors.New("unparseable value")
)

// Stats counts lines seen and dropped by Read.
type Stats struct {
	Lines        int // non-empty lines seen
	Kept         int // readings returned
	Filtered     int // valid lines for sensors outside the keep filter
	Blank        int // kept readings whose value field was empty
	BadTimestamp int
	BadValue     int
	Malformed    int
}

// Dropped returns the number of lines discarded as unparseable.
func (s Stats) Dropped() int {
	return s.BadTimestamp + s.BadValue + s.Malformed
}

// Result is the output of Read. Readings are in log order.
type Result struct {
	Readings []types.Reading
	Stats    Stats
}

// Read parses every line of r. When keep is non-nil, readings whose sensor id
// it rejects are discarded before being stored.
func Read(r io.Reader, keep func(sensorID string) bool) (*Result, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineLen)

	res := &Result{}
	seq := 0
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		res.Stats.Lines++
		seq++

		rd, err := ParseLine(line)
		switch {
		case errors.Is(err, ErrBadTimestamp):
			res.Stats.BadTimestamp++
			continue
		case errors.Is(err, ErrBadValue):
			res.Stats.BadValue++
			continue
		case err != nil:
			res.Stats.Malformed++
			continue
		}
		if keep != nil && !keep(rd.SensorID) {
			res.Stats.Filtered++
			continue
		}
		if !rd.HasValue() {
			res.Stats.Blank++
		}
		rd.Seq = seq - 1
		res.Readings = append(res.Readings, rd)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reader: scan line %d: %w", seq+1, err)
	}
	res.Stats.Kept = len(res.Readings)

	if res.Stats.Dropped() > 0 {
		slog.Warn("reader: dropped unparseable lines",
			"bad_timestamp", res.Stats.BadTimestamp,
			"bad_value", res.Stats.BadValue,
			"malformed", res.Stats.Malformed,
			"lines", res.Stats.Lines)
	}
	slog.Debug("reader: log parsed", "lines", res.Stats.Lines, "kept", res.Stats.Kept, "filtered", res.Stats.Filtered)
	return res, nil
}

// ParseLine parses one `timestamp;sensor_id;value;unit` line. The unit field
// may be absent. A blank value yields a Reading with an undefined value.
func ParseLine(line string) (types.Reading, error) {
	fields := strings.Split(line, fieldSep)
	if len(fields) < 3 || len(fields) > 4 {
		return types.Reading{}, fmt.Errorf("%w: %d fields", ErrMalformed, len(fields))
	}

	ts, err := ParseTimestamp(fields[0])
	if err != nil {
		return types.Reading{}, err
	}

	id := strings.TrimSpace(fields[1])
	if id == "" {
		return types.Reading{}, fmt.Errorf("%w: empty sensor id", ErrMalformed)
	}

	rd := types.Reading{Timestamp: ts, SensorID: id, Value: types.Undefined()}
	if raw := strings.TrimSpace(fields[2]); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || types.IsUndefined(v) {
			return types.Reading{}, fmt.Errorf("%w: %q", ErrBadValue, raw)
		}
		rd.Value = v
	}
	if len(fields) == 4 {
		rd.Unit = strings.TrimSpace(fields[3])
	}
	return rd, nil
}

// ParseTimestamp parses an ISO-8601-like timestamp and returns it in UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrBadTimestamp)
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrBadTimestamp, s)
}
