// Package daterange turns the survey-period presets offered by the admin
// console into concrete start/end instants.
package daterange

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/frahmantamala/insight-pulse/internal"
)

type Preset string

const (
	PresetCustom      Preset = "custom"
	PresetThisMonth   Preset = "this-month"
	PresetNextMonth   Preset = "next-month"
	PresetThisQuarter Preset = "this-quarter"
)

var presets = []Preset{PresetCustom, PresetThisMonth, PresetNextMonth, PresetThisQuarter}

func Presets() []Preset {
	out := make([]Preset, len(presets))
	copy(out, presets)
	return out
}

func ParsePreset(value string) (Preset, error) {
	p := Preset(strings.ToLower(strings.TrimSpace(value)))
	for _, known := range presets {
		if p == known {
			return p, nil
		}
	}
	return "", apperrors.NewValidationError(fmt.Sprintf("unknown date range option %q", value), apperrors.ErrCodeInvalidPreset)
}

// Range is a survey period. Either bound may be nil while a custom range is
// being picked.
type Range struct {
	From *time.Time
	To   *time.Time
}

func (r Range) Complete() bool {
	return r.From != nil && r.To != nil
}

func (r Range) Equal(other Range) bool {
	return sameInstant(r.From, other.From) && sameInstant(r.To, other.To)
}

func (r Range) String() string {
	return fmt.Sprintf("%s .. %s", formatBound(r.From), formatBound(r.To))
}

func formatBound(t *time.Time) string {
	if t == nil {
		return "unset"
	}
	return t.Format(time.DateOnly)
}

func sameInstant(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// Resolve computes the range for a preset relative to ref. Custom ranges
// are never computed and report false.
func Resolve(preset Preset, ref time.Time) (Range, bool) {
	var start, end time.Time

	switch preset {
	case PresetThisMonth:
		start = startOfMonth(ref)
		end = start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	case PresetNextMonth:
		start = startOfMonth(ref).AddDate(0, 1, 0)
		end = start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	case PresetThisQuarter:
		start = startOfQuarter(ref)
		end = start.AddDate(0, 3, 0).Add(-time.Nanosecond)
	default:
		return Range{}, false
	}

	return Range{From: &start, To: &end}, true
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func startOfQuarter(t time.Time) time.Time {
	firstMonth := time.Month((int(t.Month())-1)/3*3 + 1)
	return time.Date(t.Year(), firstMonth, 1, 0, 0, 0, 0, t.Location())
}
