package prayer

import "fmt"

// Padding is a (before, after) pair of minutes around a nominal prayer time.
type Padding struct {
	Before int `json:"before"`
	After  int `json:"after"`
}

// PaddingSpec carries the default padding plus optional per-prayer
// overrides. It is passed by value through every call; there is no
// process-wide padding state.
type PaddingSpec struct {
	Default   Padding            `json:"default"`
	PerPrayer map[string]Padding `json:"per_prayer,omitempty"`
}

// PaddingError reports a negative padding value. It is fatal to the
// request and surfaced before any generation work begins.
type PaddingError struct {
	Field string
	Value int
}

func (e *PaddingError) Error() string {
	return fmt.Sprintf("invalid padding: %s = %d (must be >= 0)", e.Field, e.Value)
}

// Validate rejects negative paddings, defaults and overrides alike.
func (p PaddingSpec) Validate() error {
	if p.Default.Before < 0 {
		return &PaddingError{Field: "before", Value: p.Default.Before}
	}
	if p.Default.After < 0 {
		return &PaddingError{Field: "after", Value: p.Default.After}
	}
	for name, ov := range p.PerPrayer {
		if ov.Before < 0 {
			return &PaddingError{Field: name + ".before", Value: ov.Before}
		}
		if ov.After < 0 {
			return &PaddingError{Field: name + ".after", Value: ov.After}
		}
	}
	return nil
}

// Resolve returns the effective padding for one prayer: the per-prayer
// override if present, else the default, with the after side floored to
// MinAfterPadding. This is the single place the floor is applied.
func (p PaddingSpec) Resolve(name string) Padding {
	eff := p.Default
	if ov, ok := p.PerPrayer[name]; ok {
		eff = ov
	}
	if eff.After < MinAfterPadding {
		eff.After = MinAfterPadding
	}
	return eff
}
