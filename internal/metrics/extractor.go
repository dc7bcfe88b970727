// Package metrics extracts row counters from load utility output.
package metrics

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/mortie23/tptload/pkg/tptload"
)

const (
	DefaultRowsSentPattern    = `\$LOAD:\s*Total Rows Sent To RDBMS:\s*(\d+)`
	DefaultRowsAppliedPattern = `\$LOAD:\s*Total Rows Applied:\s*(\d+)`
)

// RegexExtractor reads each counter from the first capture group of its
// pattern. Patterns are matched case-insensitively.
type RegexExtractor struct {
	rowsSent    *regexp.Regexp
	rowsApplied *regexp.Regexp
}

var _ tptload.MetricsExtractor = (*RegexExtractor)(nil)

// NewRegexExtractor compiles the counter patterns. Empty patterns select the
// defaults. A pattern that does not compile is a configuration error.
func NewRegexExtractor(rowsSentPattern, rowsAppliedPattern string) (*RegexExtractor, error) {
	sent, err := compile("rows_sent_pattern", rowsSentPattern, DefaultRowsSentPattern)
	if err != nil {
		return nil, err
	}
	applied, err := compile("rows_applied_pattern", rowsAppliedPattern, DefaultRowsAppliedPattern)
	if err != nil {
		return nil, err
	}
	return &RegexExtractor{rowsSent: sent, rowsApplied: applied}, nil
}

// NewDefaultExtractor returns an extractor for the standard TPT load markers.
func NewDefaultExtractor() *RegexExtractor {
	return &RegexExtractor{
		rowsSent:    regexp.MustCompile("(?i)" + DefaultRowsSentPattern),
		rowsApplied: regexp.MustCompile("(?i)" + DefaultRowsAppliedPattern),
	}
}

// Extract returns the counters found in output. Absent or unparsable
// counters are left nil.
func (e *RegexExtractor) Extract(output string) tptload.LoadMetrics {
	return tptload.LoadMetrics{
		RowsSent:    firstCount(e.rowsSent, output),
		RowsApplied: firstCount(e.rowsApplied, output),
	}
}

func compile(name, pattern, fallback string) (*regexp.Regexp, error) {
	if pattern == "" {
		pattern = fallback
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: metrics.%s: %v", tptload.ErrInvalidConfig, name, err)
	}
	if re.NumSubexp() < 1 {
		return nil, fmt.Errorf("%w: metrics.%s must contain a capture group", tptload.ErrInvalidConfig, name)
	}
	return re, nil
}

func firstCount(re *regexp.Regexp, output string) *int64 {
	m := re.FindStringSubmatch(output)
	if m == nil {
		return nil
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return nil
	}
	return &n
}
