// Package period generates the milestone periods a goal or aptitude is
// tracked against within a fiscal year.
//
// The fiscal year Y runs from September 1 of Y to August 31 of Y+1. Period
// codes are stable for a given (year, frequency, window) so evaluations keyed
// on them can be regenerated:
//
//	monthly    YYYYMnn  calendar year and month of the period start
//	quarterly  YYYYQn   fiscal year and ordinal within the window
//	semestral  YYYYSn   fiscal year and ordinal within the window
//	annual     YYYYAn   fiscal year and ordinal within the window
package period

import (
	"fmt"
	"time"

	"scorecard/internal/platform/apperror"
)

type Frequency string

const (
	Monthly   Frequency = "monthly"
	Quarterly Frequency = "quarterly"
	Semestral Frequency = "semestral"
	Annual    Frequency = "annual"
)

const fiscalStartMonth = time.September

// Months returns the length of one period unit, or 0 for unknown frequencies.
func (f Frequency) Months() int {
	switch f {
	case Monthly:
		return 1
	case Quarterly:
		return 3
	case Semestral:
		return 6
	case Annual:
		return 12
	default:
		return 0
	}
}

func (f Frequency) Valid() bool {
	return f.Months() > 0
}

func (f Frequency) codeLetter() string {
	switch f {
	case Quarterly:
		return "Q"
	case Semestral:
		return "S"
	case Annual:
		return "A"
	default:
		return "M"
	}
}

// Window is an inclusive date range. Times are truncated to UTC dates.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Period is one tracking window. End is the last day included.
type Period struct {
	Code    string    `json:"code"`
	Ordinal int       `json:"ordinal"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
}

func (p Period) Contains(t time.Time) bool {
	d := dateOf(t)
	return !d.Before(p.Start) && !d.After(p.End)
}

// FiscalWindow returns September 1 of year through August 31 of year+1.
func FiscalWindow(year int) Window {
	start := time.Date(year, fiscalStartMonth, 1, 0, 0, 0, 0, time.UTC)
	return Window{Start: start, End: start.AddDate(1, 0, -1)}
}

// FiscalYearOf returns the fiscal year a date belongs to.
func FiscalYearOf(t time.Time) int {
	if t.Month() >= fiscalStartMonth {
		return t.Year()
	}
	return t.Year() - 1
}

// Generate returns the ordered, non-overlapping periods covering the fiscal
// year, or the custom window when one is given. A window shorter than one
// period unit still yields its first period.
func Generate(year int, freq Frequency, custom *Window) ([]Period, error) {
	if !freq.Valid() {
		return nil, apperror.Validation("frequency", fmt.Sprintf("unsupported frequency %q", freq))
	}
	window := FiscalWindow(year)
	if custom != nil {
		window = Window{Start: dateOf(custom.Start), End: dateOf(custom.End)}
		if window.Start.IsZero() || window.End.IsZero() {
			return nil, apperror.Validation("window", "custom window requires start and end")
		}
		if window.End.Before(window.Start) {
			return nil, apperror.Validation("window", "end must be on or after start")
		}
	}

	unit := freq.Months()
	var periods []Period
	for i := 0; ; i++ {
		start := addMonths(window.Start, i*unit)
		if i > 0 && start.After(window.End) {
			break
		}
		end := addMonths(window.Start, (i+1)*unit).AddDate(0, 0, -1)
		if end.After(window.End) {
			end = window.End
		}
		periods = append(periods, Period{
			Code:    code(year, freq, i+1, start),
			Ordinal: i + 1,
			Start:   start,
			End:     end,
		})
	}
	return periods, nil
}

// Codes is a convenience wrapper returning only the period codes.
func Codes(year int, freq Frequency, custom *Window) ([]string, error) {
	periods, err := Generate(year, freq, custom)
	if err != nil {
		return nil, err
	}
	codes := make([]string, len(periods))
	for i, p := range periods {
		codes[i] = p.Code
	}
	return codes, nil
}

func code(year int, freq Frequency, ordinal int, start time.Time) string {
	if freq == Monthly {
		return fmt.Sprintf("%04dM%02d", start.Year(), int(start.Month()))
	}
	return fmt.Sprintf("%04d%s%d", year, freq.codeLetter(), ordinal)
}

// addMonths moves t by n months, clamping the day to the target month's
// length so Jan 31 + 1 month is Feb 28/29 rather than early March.
func addMonths(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	lastDay := first.AddDate(0, 1, -1).Day()
	day := t.Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

func dateOf(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
