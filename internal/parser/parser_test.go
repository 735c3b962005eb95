package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectDelimiter(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  string
	}{
		{"comma", []string{"a,b,c,d"}, ","},
		{"pipe", []string{"a|b|c|d"}, "|"},
		{"tab", []string{"a\tb\tc\td"}, "\t"},
		{"semicolon", []string{"a;b;c;d"}, ";"},
		{"comment line skipped", []string{"# a|b|c", "a;b;c;d"}, ";"},
		{"no delimiter defaults to comma", []string{"plainline"}, ","},
		{"empty input defaults to comma", nil, ","},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectDelimiter(tt.lines))
		})
	}
}

func TestIsHeader(t *testing.T) {
	assert.True(t, IsHeader("event_id,event_name,start_date,end_date"))
	assert.True(t, IsHeader("EventID|Name|Start|End"))
	assert.False(t, IsHeader("moon landing,first crewed landing,1969-07-20,1969-07-21"))
}

func TestDecodeJSON(t *testing.T) {
	p := New(",")

	line := `{"eventName":"moon landing","description":"Apollo 11","startDate":"2020-01-01T00:00:00Z","endDate":"2020-01-01T01:30:00Z","parentId":"apollo","metadata":{"crew":3}}`
	ev, err := p.Decode(line)
	require.NoError(t, err)

	assert.Equal(t, "moon landing", ev.EventName)
	assert.Equal(t, "Apollo 11", ev.Description)
	assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), ev.StartDate)
	assert.Equal(t, int64(90), ev.DurationMinutes)
	require.NotNil(t, ev.ParentEventID)
	assert.Equal(t, "apollo", *ev.ParentEventID)
	assert.Equal(t, float64(3), ev.Metadata["crew"])
	assert.NotEmpty(t, ev.EventID, "id is generated when absent")
}

func TestDecodeJSONNormalizesToUTC(t *testing.T) {
	ev, err := New(",").Decode(`{"eventName":"x","startDate":"2020-06-01T12:00:00+02:00","endDate":"2020-06-01T13:00:00+02:00"}`)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, ev.StartDate.Location())
	assert.Equal(t, time.Date(2020, 6, 1, 10, 0, 0, 0, time.UTC), ev.StartDate)
}

func TestDecodeRichLayout(t *testing.T) {
	p := New(",")

	ev, err := p.Decode("ev-1,moon landing,1969-07-20T20:17:00Z,1969-07-21T17:54:00Z,apollo,7.5,first crewed landing")
	require.NoError(t, err)

	assert.Equal(t, "ev-1", ev.EventID)
	assert.Equal(t, "moon landing", ev.EventName)
	assert.Equal(t, "first crewed landing", ev.Description)
	require.NotNil(t, ev.ParentEventID)
	assert.Equal(t, "apollo", *ev.ParentEventID)
	assert.Equal(t, 7.5, ev.Metadata["value"])
}

func TestDecodeRichLayoutKeepsDelimiterInDescription(t *testing.T) {
	ev, err := New(",").Decode("ev-1,moon landing,1969-07-20T20:17:00Z,1969-07-21T17:54:00Z,apollo,7.5,landed, walked, returned")
	require.NoError(t, err)
	assert.Equal(t, "landed, walked, returned", ev.Description)
}

func TestDecodeRichLayoutGeneratesID(t *testing.T) {
	ev, err := New(",").Decode(",moon landing,1969-07-20T20:17:00Z,1969-07-21T17:54:00Z,,,")
	require.NoError(t, err)
	assert.NotEmpty(t, ev.EventID)
	assert.Nil(t, ev.ParentEventID)
	assert.Nil(t, ev.Metadata)
}

func TestDecodeMinimalLayoutFallback(t *testing.T) {
	p := New("|")

	// Six fields: below the rich layout's count, so the minimal layout applies.
	ev, err := p.Decode(`fall of rome|western empire ends|0476-09-04|0476-09-05|rome|{"region":"italy"}`)
	require.NoError(t, err)

	assert.Equal(t, "fall of rome", ev.EventName)
	assert.Equal(t, "western empire ends", ev.Description)
	require.NotNil(t, ev.ParentEventID)
	assert.Equal(t, "rome", *ev.ParentEventID)
	assert.Equal(t, "italy", ev.Metadata["region"])
}

func TestDecodeMinimalLayoutWithoutOptionalFields(t *testing.T) {
	ev, err := New(",").Decode("battle,short fight,2020-01-01,2020-01-02")
	require.NoError(t, err)
	assert.Nil(t, ev.ParentEventID)
	assert.Equal(t, int64(24*60), ev.DurationMinutes)
}

func TestDecodeRejects(t *testing.T) {
	p := New(",")

	tests := []struct {
		name string
		line string
	}{
		{"missing name", ",desc,2020-01-01,2020-01-02"},
		{"bad start date", "name,desc,notadate,2020-01-02"},
		{"bad end date", "name,desc,2020-01-01,notadate"},
		{"start equals end", "name,desc,2020-01-01,2020-01-01"},
		{"start after end", "name,desc,2020-01-02,2020-01-01"},
		{"too few fields", "name,desc"},
		{"bad numeric value", "id,name,2020-01-01,2020-01-02,,not-a-number,desc"},
		{"bad metadata json", "name,desc,2020-01-01,2020-01-02,,{broken"},
		{"json missing name", `{"startDate":"2020-01-01T00:00:00Z","endDate":"2020-01-02T00:00:00Z"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Decode(tt.line)
			assert.Error(t, err)
		})
	}
}

func TestParseTimestampLayouts(t *testing.T) {
	for _, raw := range []string{
		"2020-01-01T00:00:00Z",
		"2020-01-01T00:00:00.123Z",
		"2020-01-01T00:00:00",
		"2020-01-01 00:00:00",
		"2020-01-01",
	} {
		_, err := parseTimestamp(raw)
		assert.NoError(t, err, raw)
	}
	_, err := parseTimestamp("")
	assert.Error(t, err)
}
