package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownVariant is returned when a mode, tone or depth value is not recognized
var ErrUnknownVariant = errors.New("unknown variant")

// ProjectMode is the kind of branding project being requested
type ProjectMode int

const (
	ModeNew ProjectMode = iota + 1
	ModeRebrand
	ModeExtension
)

// Tone is the brand tone & manner requested for the document
type Tone int

const (
	ToneWarm Tone = iota + 1
	ToneTechnical
	ToneBold
	ToneMinimal
)

// Depth selects how detailed the generated document should be
type Depth int

const (
	DepthSummary Depth = iota + 1
	DepthStandard
	DepthDetailed
)

// Defaults used when a brief does not specify a variant
const (
	DefaultMode  = ModeNew
	DefaultTone  = ToneWarm
	DefaultDepth = DepthStandard
)

// variant pairs a stable key with its Korean display label
type variant struct {
	key   string
	label string
}

var modeVariants = map[ProjectMode]variant{
	ModeNew:       {"new", "신규 브랜딩"},
	ModeRebrand:   {"rebrand", "리브랜딩"},
	ModeExtension: {"extension", "서비스 확장/하위브랜드"},
}

var toneVariants = map[Tone]variant{
	ToneWarm:      {"warm", "따뜻/친근"},
	ToneTechnical: {"technical", "기술/전문"},
	ToneBold:      {"bold", "대담/혁신"},
	ToneMinimal:   {"minimal", "미니멀/정제"},
}

var depthVariants = map[Depth]variant{
	DepthSummary:  {"summary", "요약형"},
	DepthStandard: {"standard", "표준형"},
	DepthDetailed: {"detailed", "상세형"},
}

// AllModes returns every project mode in display order
func AllModes() []ProjectMode { return []ProjectMode{ModeNew, ModeRebrand, ModeExtension} }

// AllTones returns every tone in display order
func AllTones() []Tone { return []Tone{ToneWarm, ToneTechnical, ToneBold, ToneMinimal} }

// AllDepths returns every depth in display order
func AllDepths() []Depth { return []Depth{DepthSummary, DepthStandard, DepthDetailed} }

// Valid reports whether m is a recognized project mode
func (m ProjectMode) Valid() bool {
	_, ok := modeVariants[m]
	return ok
}

// Key returns the stable English key, e.g. "rebrand"
func (m ProjectMode) Key() string { return modeVariants[m].key }

// String returns the Korean label used in prompts and exports
func (m ProjectMode) String() string {
	if v, ok := modeVariants[m]; ok {
		return v.label
	}
	return fmt.Sprintf("ProjectMode(%d)", int(m))
}

// MarshalText writes the display label
func (m ProjectMode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("project mode %d: %w", int(m), ErrUnknownVariant)
	}
	return []byte(m.String()), nil
}

// UnmarshalText accepts either the key or the display label
func (m *ProjectMode) UnmarshalText(text []byte) error {
	parsed, err := ParseProjectMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseProjectMode resolves a key ("new") or label ("신규 브랜딩")
func ParseProjectMode(s string) (ProjectMode, error) {
	for _, m := range AllModes() {
		if matchVariant(modeVariants[m], s) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("project mode %q: %w", s, ErrUnknownVariant)
}

// Valid reports whether t is a recognized tone
func (t Tone) Valid() bool {
	_, ok := toneVariants[t]
	return ok
}

// Key returns the stable English key, e.g. "bold"
func (t Tone) Key() string { return toneVariants[t].key }

// String returns the Korean label used in prompts and exports
func (t Tone) String() string {
	if v, ok := toneVariants[t]; ok {
		return v.label
	}
	return fmt.Sprintf("Tone(%d)", int(t))
}

// MarshalText writes the display label
func (t Tone) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("tone %d: %w", int(t), ErrUnknownVariant)
	}
	return []byte(t.String()), nil
}

// UnmarshalText accepts either the key or the display label
func (t *Tone) UnmarshalText(text []byte) error {
	parsed, err := ParseTone(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseTone resolves a key ("warm") or label ("따뜻/친근")
func ParseTone(s string) (Tone, error) {
	for _, t := range AllTones() {
		if matchVariant(toneVariants[t], s) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("tone %q: %w", s, ErrUnknownVariant)
}

// Valid reports whether d is a recognized depth
func (d Depth) Valid() bool {
	_, ok := depthVariants[d]
	return ok
}

// Key returns the stable English key, e.g. "standard"
func (d Depth) Key() string { return depthVariants[d].key }

// String returns the Korean label used in prompts and exports
func (d Depth) String() string {
	if v, ok := depthVariants[d]; ok {
		return v.label
	}
	return fmt.Sprintf("Depth(%d)", int(d))
}

// Richness returns the fixed richness descriptor for the depth.
// Callers must check Valid first; an unknown depth is a programming error.
func (d Depth) Richness() string {
	switch d {
	case DepthSummary:
		return "succinct with key bullets"
	case DepthStandard:
		return "balanced detail with examples"
	case DepthDetailed:
		return "deep detail with frameworks, matrices and examples"
	}
	panic(fmt.Sprintf("models: no richness descriptor for %v", d))
}

// MarshalText writes the display label
func (d Depth) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("depth %d: %w", int(d), ErrUnknownVariant)
	}
	return []byte(d.String()), nil
}

// UnmarshalText accepts either the key or the display label
func (d *Depth) UnmarshalText(text []byte) error {
	parsed, err := ParseDepth(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseDepth resolves a key ("standard") or label ("표준형")
func ParseDepth(s string) (Depth, error) {
	for _, d := range AllDepths() {
		if matchVariant(depthVariants[d], s) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("depth %q: %w", s, ErrUnknownVariant)
}

func matchVariant(v variant, s string) bool {
	s = strings.TrimSpace(s)
	return strings.EqualFold(s, v.key) || s == v.label
}
