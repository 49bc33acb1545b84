package research

import "strings"

type Mode string

const (
	ModeFast          Mode = "fast"
	ModeBalanced      Mode = "balanced"
	ModeComprehensive Mode = "comprehensive"
)

// Params holds the slider defaults and upper bounds for a mode. The lower
// bound of both controls is always MinValue.
type Params struct {
	Mode           Mode `json:"mode"`
	DefaultBreadth int  `json:"default_breadth"`
	DefaultDepth   int  `json:"default_depth"`
	MaxBreadth     int  `json:"max_breadth"`
	MaxDepth       int  `json:"max_depth"`
}

const MinValue = 1

var paramsByMode = map[Mode]Params{
	ModeFast:          {Mode: ModeFast, DefaultBreadth: 3, DefaultDepth: 2, MaxBreadth: 3, MaxDepth: 2},
	ModeBalanced:      {Mode: ModeBalanced, DefaultBreadth: 5, DefaultDepth: 3, MaxBreadth: 7, MaxDepth: 3},
	ModeComprehensive: {Mode: ModeComprehensive, DefaultBreadth: 5, DefaultDepth: 5, MaxBreadth: 5, MaxDepth: 5},
}

type ModeInfo struct {
	Params
	Label       string   `json:"label"`
	Description string   `json:"description"`
	Details     []string `json:"details"`
}

var modeInfo = []ModeInfo{
	{
		Params:      paramsByMode[ModeFast],
		Label:       "Fast",
		Description: "Quick research (~1-3 min)",
		Details: []string{
			"Quick, surface-level research",
			"Up to 3 queries",
			"No recursive deep diving",
			"Ideal for rapid insights",
		},
	},
	{
		Params:      paramsByMode[ModeBalanced],
		Label:       "Balanced",
		Description: "Moderate depth (~3-6 min)",
		Details: []string{
			"Moderate depth and range",
			"Up to 7 queries",
			"Focuses on core relationships",
			"Recommended for general research",
		},
	},
	{
		Params:      paramsByMode[ModeComprehensive],
		Label:       "Comprehensive",
		Description: "In-depth (~5-12 min)",
		Details: []string{
			"Exhaustive analysis",
			"Recursive deep dives",
			"Explores all relationship levels",
			"Ideal for academic/technical depth",
		},
	},
}

// ParseMode maps free text to a Mode. Anything unrecognised is treated as
// balanced.
func ParseMode(value string) Mode {
	mode := Mode(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := paramsByMode[mode]; ok {
		return mode
	}
	return ModeBalanced
}

func (m Mode) Valid() bool {
	_, ok := paramsByMode[m]
	return ok
}

func (m Mode) String() string {
	return string(m)
}

// Derive returns the defaults and bounds for mode.
func Derive(mode Mode) Params {
	if params, ok := paramsByMode[mode]; ok {
		return params
	}
	return paramsByMode[ModeBalanced]
}

// Modes lists every mode in display order.
func Modes() []ModeInfo {
	out := make([]ModeInfo, len(modeInfo))
	for i, info := range modeInfo {
		info.Details = append([]string{}, info.Details...)
		out[i] = info
	}
	return out
}

func Info(mode Mode) ModeInfo {
	for _, info := range Modes() {
		if info.Mode == mode {
			return info
		}
	}
	return Info(ModeBalanced)
}

// NextMode cycles fast -> balanced -> comprehensive -> fast.
func NextMode(mode Mode) Mode {
	switch mode {
	case ModeFast:
		return ModeBalanced
	case ModeBalanced:
		return ModeComprehensive
	default:
		return ModeFast
	}
}

func PrevMode(mode Mode) Mode {
	switch mode {
	case ModeComprehensive:
		return ModeBalanced
	case ModeBalanced:
		return ModeFast
	default:
		return ModeComprehensive
	}
}
