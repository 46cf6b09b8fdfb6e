package viewmodel

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// UnknownTime is shown for absent or unparseable timestamps.
const UnknownTime = "unknown"

// DurationFormatter turns a duration in seconds into a short human string.
type DurationFormatter interface {
	Format(seconds float64) string
}

// DurationFormatterFunc adapts a plain function to DurationFormatter.
type DurationFormatterFunc func(seconds float64) string

func (f DurationFormatterFunc) Format(seconds float64) string {
	return f(seconds)
}

var prettyMagnitudes = []humanize.RelTimeMagnitude{
	{D: time.Second, Format: "0 seconds", DivBy: time.Second},
	{D: 2 * time.Second, Format: "1 second", DivBy: time.Second},
	{D: time.Minute, Format: "%d seconds", DivBy: time.Second},
	{D: 2 * time.Minute, Format: "1 minute", DivBy: time.Minute},
	{D: time.Hour, Format: "%d minutes", DivBy: time.Minute},
	{D: 2 * time.Hour, Format: "1 hour", DivBy: time.Hour},
	{D: humanize.Day, Format: "%d hours", DivBy: time.Hour},
	{D: 2 * humanize.Day, Format: "1 day", DivBy: humanize.Day},
	{D: math.MaxInt64, Format: "%d days", DivBy: humanize.Day},
}

// PrettyDuration returns the default formatter, coarsened to seconds,
// minutes, hours or days.
func PrettyDuration() DurationFormatter {
	return DurationFormatterFunc(func(seconds float64) string {
		base := time.Unix(0, 0)
		d := time.Duration(seconds * float64(time.Second))
		return humanize.CustomRelTime(base, base.Add(d), "", "", prettyMagnitudes)
	})
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.9999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC1123,
}

var errEmptyTimestamp = errors.New("empty timestamp")

// ParseTimestamp parses the host's timestamp encodings. Zone-less values are
// taken as UTC.
func ParseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errEmptyTimestamp
	}
	var firstErr error
	for _, layout := range timestampLayouts {
		ts, err := time.ParseInLocation(layout, raw, time.UTC)
		if err == nil {
			return ts, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// TimeFormatter renders absolute times relative to now.
type TimeFormatter struct {
	Now    func() time.Time
	Pretty DurationFormatter
}

// NewTimeFormatter uses the wall clock and PrettyDuration.
func NewTimeFormatter() TimeFormatter {
	return TimeFormatter{Now: time.Now, Pretty: PrettyDuration()}
}

func (f TimeFormatter) now() time.Time {
	if f.Now == nil {
		return time.Now()
	}
	return f.Now()
}

func (f TimeFormatter) pretty() DurationFormatter {
	if f.Pretty == nil {
		return PrettyDuration()
	}
	return f.Pretty
}

// Ago renders ts as "<duration> ago".
func (f TimeFormatter) Ago(ts time.Time) string {
	if ts.IsZero() {
		return UnknownTime
	}
	seconds := f.now().Sub(ts).Seconds()
	return f.pretty().Format(seconds) + " ago"
}

// AgoString parses raw and renders it like Ago.
func (f TimeFormatter) AgoString(raw string) string {
	ts, err := ParseTimestamp(raw)
	if err != nil {
		return UnknownTime
	}
	return f.Ago(ts)
}
