// Package parser turns raw input lines into validated events.
//
// A file is decoded line by line with an ordered list of candidate decoders:
// a self-describing JSON object first, then a delimited row in the rich
// column layout, then the minimal layout. Each decoder is a pure function
// from one line to an event or an error; the first one that accepts wins.
package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/eventscope/eventscope/internal/models"
)

// Delimiter candidates, tried against a sample line; the one producing the
// most fields wins.
var delimiters = []string{",", "|", "\t", ";"}

// Column names that mark a leading header line.
var headerTokens = []string{"event_id", "eventid", "event_name", "eventname", "start_date", "startdate"}

// Timestamp layouts accepted in delimited rows and JSON records, most
// specific first. All parsed times are normalized to UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Parser decodes lines of one file using the delimiter detected for it.
type Parser struct {
	delimiter string
}

// New returns a parser bound to the given field delimiter.
func New(delimiter string) *Parser {
	return &Parser{delimiter: delimiter}
}

// DetectDelimiter samples the first non-comment line and returns the
// candidate delimiter that splits it into the most fields. Comma wins ties
// and empty input.
func DetectDelimiter(lines []string) string {
	var sample string
	for _, l := range lines {
		if !strings.HasPrefix(strings.TrimSpace(l), "#") {
			sample = l
			break
		}
	}

	best := ","
	bestFields := 0
	for _, d := range delimiters {
		if n := len(strings.Split(sample, d)); n > bestFields {
			best = d
			bestFields = n
		}
	}
	return best
}

// IsHeader reports whether line looks like a column-header row. Only the
// very first non-empty line of a file is ever tested.
func IsHeader(line string) bool {
	lower := strings.ToLower(line)
	for _, tok := range headerTokens {
		if strings.Contains(lower, tok) {
			return true
		}
	}
	return false
}

// Decode turns one raw line into a validated event. A structured (JSON)
// parse is attempted first; on failure the line is split on the detected
// delimiter and decoded as a rich row, falling back to the minimal layout
// when the rich layout's field count is not met.
func (p *Parser) Decode(line string) (*models.Event, error) {
	if ev, err := decodeJSON(line); err == nil {
		return ev, nil
	}

	fields := strings.Split(line, p.delimiter)
	ev, err := decodeRich(fields, p.delimiter)
	if errors.Is(err, errFieldCount) {
		ev, err = decodeMinimal(fields)
	}
	return ev, err
}

// jsonRecord is the self-describing per-line encoding.
type jsonRecord struct {
	EventID       string         `json:"eventId"`
	EventName     string         `json:"eventName"`
	Description   string         `json:"description"`
	StartDate     string         `json:"startDate"`
	EndDate       string         `json:"endDate"`
	ParentEventID string         `json:"parentEventId"`
	ParentID      string         `json:"parentId"`
	Metadata      map[string]any `json:"metadata"`
}

func decodeJSON(line string) (*models.Event, error) {
	var rec jsonRecord
	if err := json.Unmarshal([]byte(line), &rec); err != nil {
		return nil, err
	}

	parent := rec.ParentEventID
	if parent == "" {
		parent = rec.ParentID
	}

	return finalize(rec.EventID, rec.EventName, rec.Description,
		rec.StartDate, rec.EndDate, parent, rec.Metadata)
}

// errFieldCount triggers the fallback from the rich layout to the minimal one.
var errFieldCount = errors.New("field count below rich layout")

// decodeRich decodes the id,name,start,end,parent,value,description layout.
// The description is the last column, so splits past the sixth field are
// rejoined with the file's delimiter to keep the original text intact.
func decodeRich(fields []string, delimiter string) (*models.Event, error) {
	if len(fields) < 7 {
		return nil, errFieldCount
	}

	var meta map[string]any
	if v := strings.TrimSpace(fields[5]); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid numeric value %q", v)
		}
		meta = map[string]any{"value": f}
	}

	desc := strings.TrimSpace(strings.Join(fields[6:], delimiter))
	return finalize(strings.TrimSpace(fields[0]), strings.TrimSpace(fields[1]), desc,
		strings.TrimSpace(fields[2]), strings.TrimSpace(fields[3]),
		strings.TrimSpace(fields[4]), meta)
}

// decodeMinimal decodes the name,description,start,end,parent,metadata layout.
func decodeMinimal(fields []string) (*models.Event, error) {
	if len(fields) < 4 {
		return nil, fmt.Errorf("expected at least 4 delimited fields, got %d", len(fields))
	}

	var (
		parent string
		meta   map[string]any
	)
	if len(fields) > 4 {
		parent = strings.TrimSpace(fields[4])
	}
	if len(fields) > 5 {
		if raw := strings.TrimSpace(fields[5]); raw != "" {
			if err := json.Unmarshal([]byte(raw), &meta); err != nil {
				return nil, fmt.Errorf("invalid metadata: %v", err)
			}
		}
	}

	return finalize("", strings.TrimSpace(fields[0]), strings.TrimSpace(fields[1]),
		strings.TrimSpace(fields[2]), strings.TrimSpace(fields[3]), parent, meta)
}

// finalize validates the decoded fields and assembles the event: name and
// both timestamps are required, start must precede end strictly, timestamps
// are normalized to UTC and the duration is recomputed.
func finalize(id, name, desc, startRaw, endRaw, parent string, meta map[string]any) (*models.Event, error) {
	if name == "" {
		return nil, errors.New("event name is required")
	}

	start, err := parseTimestamp(startRaw)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q", startRaw)
	}
	end, err := parseTimestamp(endRaw)
	if err != nil {
		return nil, fmt.Errorf("invalid end date %q", endRaw)
	}
	if !start.Before(end) {
		return nil, errors.New("start date must be before end date")
	}

	if id == "" {
		id = uuid.New().String()
	}

	ev := &models.Event{
		EventID:         id,
		EventName:       name,
		Description:     desc,
		StartDate:       start,
		EndDate:         end,
		DurationMinutes: models.DurationMinutes(start, end),
		Metadata:        meta,
	}
	if parent != "" {
		ev.ParentEventID = &parent
	}
	return ev, nil
}

func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
