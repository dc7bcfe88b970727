package metrics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mortie23/tptload/pkg/tptload"
)

func int64p(n int64) *int64 { return &n }

func TestRegexExtractor_Extract(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		sent    *int64
		applied *int64
	}{
		{
			name:    "both markers",
			output:  "$LOAD: Total Rows Sent To RDBMS: 1234\n$LOAD: Total Rows Applied: 1200\n",
			sent:    int64p(1234),
			applied: int64p(1200),
		},
		{
			name:   "neither marker",
			output: "Teradata Parallel Transporter Version 17.20\nJob step MAIN_STEP completed successfully",
		},
		{
			name:    "case insensitive",
			output:  "$load: total rows sent to rdbms: 7\n$LOAD: TOTAL ROWS APPLIED: 5",
			sent:    int64p(7),
			applied: int64p(5),
		},
		{
			name:   "only sent",
			output: "$LOAD: Total Rows Sent To RDBMS:      42",
			sent:   int64p(42),
		},
		{
			name:    "first match wins",
			output:  "$LOAD: Total Rows Applied: 10\n$LOAD: Total Rows Applied: 99",
			applied: int64p(10),
		},
		{
			name:   "overflow is absent",
			output: "$LOAD: Total Rows Sent To RDBMS: 99999999999999999999999",
		},
	}

	extractor := NewDefaultExtractor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractor.Extract(tt.output)
			assert.Equal(t, tt.sent, got.RowsSent)
			assert.Equal(t, tt.applied, got.RowsApplied)
		})
	}
}

func TestNewRegexExtractor_DefaultsMatchDefaultExtractor(t *testing.T) {
	extractor, err := NewRegexExtractor("", "")
	require.NoError(t, err)

	output := "$LOAD: Total Rows Sent To RDBMS: 3\n$LOAD: Total Rows Applied: 2"
	assert.Equal(t, NewDefaultExtractor().Extract(output), extractor.Extract(output))
}

func TestNewRegexExtractor_CustomPatterns(t *testing.T) {
	extractor, err := NewRegexExtractor(`rows read:\s*(\d+)`, `rows inserted:\s*(\d+)`)
	require.NoError(t, err)

	got := extractor.Extract("Rows Read: 11\nRows Inserted: 9")
	require.NotNil(t, got.RowsSent)
	require.NotNil(t, got.RowsApplied)
	assert.Equal(t, int64(11), *got.RowsSent)
	assert.Equal(t, int64(9), *got.RowsApplied)
}

func TestNewRegexExtractor_InvalidPatterns(t *testing.T) {
	tests := []struct {
		name    string
		sent    string
		applied string
	}{
		{"bad syntax", `(\d+`, ""},
		{"no capture group", "", `rows applied`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegexExtractor(tt.sent, tt.applied)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tptload.ErrInvalidConfig))
		})
	}
}
