package daterange

import (
	"time"
)

type Listener func(Range)

type Option func(*Picker)

func WithClock(now func() time.Time) Option {
	return func(p *Picker) {
		p.now = now
	}
}

// Picker holds the selected preset and the resolved range. Every change to
// the range is pushed to the listener before the mutating call returns.
type Picker struct {
	preset   Preset
	current  Range
	listener Listener
	now      func() time.Time
}

func NewPicker(opts ...Option) *Picker {
	p := &Picker{
		preset: PresetCustom,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Picker) OnChange(l Listener) {
	p.listener = l
}

func (p *Picker) Preset() Preset {
	return p.preset
}

func (p *Picker) Range() Range {
	return p.current
}

// Select switches the preset. Any preset other than custom overwrites both
// dates; custom keeps whatever was there.
func (p *Picker) Select(preset Preset) error {
	parsed, err := ParsePreset(string(preset))
	if err != nil {
		return err
	}
	p.preset = parsed

	resolved, ok := Resolve(parsed, p.now())
	if !ok {
		return nil
	}
	p.set(resolved)
	return nil
}

func (p *Picker) SetStart(t *time.Time) {
	p.set(Range{From: copyTime(t), To: p.current.To})
}

func (p *Picker) SetEnd(t *time.Time) {
	p.set(Range{From: p.current.From, To: copyTime(t)})
}

func (p *Picker) set(next Range) {
	if p.current.Equal(next) {
		return
	}
	p.current = next
	if p.listener != nil {
		p.listener(next)
	}
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
