package duration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   int64
		wantOK bool
	}{
		{name: "compound", input: "1d2h3m", want: 93_780_000, wantOK: true},
		{name: "seconds only", input: "45s", want: 45_000, wantOK: true},
		{name: "units in any order", input: "3m1d", want: 86_400_000 + 180_000, wantOK: true},
		{name: "uppercase unit after a lowercase one", input: "2H1m", want: 2*3_600_000 + 60_000, wantOK: true},
		{name: "first occurrence of a unit wins", input: "1m5m", want: 60_000, wantOK: true},
		{name: "empty", input: "", wantOK: false},
		{name: "no unit", input: "abc", wantOK: false},
		{name: "digits without unit", input: "120", wantOK: false},
		{name: "single character yields zero", input: "5", want: 0, wantOK: true},
		{name: "uppercase only", input: "1D", wantOK: false},
		{name: "int64 overflow", input: "99999999999999999999d", wantOK: false},
		{name: "past representable instant", input: "100000000d", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.input)
			require.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParseUsesCurrentInstant(t *testing.T) {
	original := now
	t.Cleanup(func() { now = original })

	now = func() time.Time { return time.UnixMilli(maxInstantMillis - 1_000) }

	_, ok := Parse("1s")
	assert.True(t, ok)
	_, ok = Parse("2s")
	assert.False(t, ok)
}

func TestMustParsePanicsOnInvalid(t *testing.T) {
	assert.Equal(t, int64(60_000), MustParse("1m"))
	assert.Panics(t, func() { MustParse("soon") })
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name   string
		millis int64
		bold   bool
		want   string
	}{
		{name: "descending units", millis: 93_780_000, want: "1 day, 2 hours, 3 minutes"},
		{name: "bold numerals", millis: 93_780_000, bold: true, want: "**1** day, **2** hours, **3** minutes"},
		{name: "under a second", millis: 999, want: LessThanASecond},
		{name: "negative", millis: -5, want: LessThanASecond},
		{name: "single second", millis: 1_000, want: "1 second"},
		{name: "zero units omitted", millis: 3_600_000 + 5_000, want: "1 hour, 5 seconds"},
		{name: "thirty days is a month", millis: 30 * 86_400_000, want: "1 month"},
		{name: "twelve months is a year", millis: 2 * 360 * 86_400_000, want: "2 years"},
		{name: "sub-second remainder dropped", millis: 61_999, want: "1 minute, 1 second"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.millis, tt.bold))
		})
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "2 minutes", FormatDuration(2*time.Minute, false))
}
