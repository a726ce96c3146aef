// Package leveling maps accumulated experience points onto the 100-level
// tier ladder shown on user profiles.
package leveling

import (
	"math"
	"sort"
	"sync"

	"kaamgarau/internal/core"
)

const (
	BaseXP        = 150.0
	Exponent      = 2.4
	MaxLevel      = 100
	LevelsPerTier = 10
)

var tierNames = [MaxLevel / LevelsPerTier]core.Label{
	{EN: "Wood", NP: "काठ"},
	{EN: "Stone", NP: "ढुङ्गा"},
	{EN: "Bronze", NP: "काँस"},
	{EN: "Silver", NP: "चाँदी"},
	{EN: "Gold", NP: "सुन"},
	{EN: "Platinum", NP: "प्लेटिनम"},
	{EN: "Emerald", NP: "पन्ना"},
	{EN: "Sapphire", NP: "नीलम"},
	{EN: "Ruby", NP: "माणिक"},
	{EN: "Diamond", NP: "हीरा"},
}

var romanNumerals = [LevelsPerTier]string{"I", "II", "III", "IV", "V", "VI", "VII", "VIII", "IX", "X"}

// Unranked is the label used when no threshold applies.
var Unranked = core.Label{EN: "Unranked", NP: "अवर्गीकृत"}

// Threshold is the XP needed to reach a level.
type Threshold struct {
	Level      int        `json:"level"`
	XPRequired int64      `json:"xpRequired"`
	Name       core.Label `json:"tierName"`
}

// XPRequired returns floor(150 * (level-1)^2.4). Levels below 1 need 0 XP.
func XPRequired(level int) int64 {
	if level <= 1 {
		return 0
	}
	return int64(math.Floor(BaseXP * math.Pow(float64(level-1), Exponent)))
}

// TierName returns the bilingual "<Tier> <Roman>" label for a level in
// 1..MaxLevel, or Unranked outside that range.
func TierName(level int) core.Label {
	if level < 1 || level > MaxLevel {
		return Unranked
	}
	tier := tierNames[(level-1)/LevelsPerTier]
	roman := romanNumerals[(level-1)%LevelsPerTier]
	return core.Label{
		EN: tier.EN + " " + roman,
		NP: tier.NP + " " + roman,
	}
}

// GenerateThresholds builds the full 100-entry threshold table. It is pure;
// callers that need it repeatedly should hold a Table instead.
func GenerateThresholds() []Threshold {
	out := make([]Threshold, 0, MaxLevel)
	for level := 1; level <= MaxLevel; level++ {
		out = append(out, Threshold{
			Level:      level,
			XPRequired: XPRequired(level),
			Name:       TierName(level),
		})
	}
	return out
}

// Table is an immutable threshold table. The zero value is not usable; build
// one with NewTable or use Default.
type Table struct {
	thresholds []Threshold
}

// NewTable generates a fresh table.
func NewTable() *Table {
	return &Table{thresholds: GenerateThresholds()}
}

var defaultTable = sync.OnceValue(NewTable)

// Default returns the process-wide table, generated on first use.
func Default() *Table {
	return defaultTable()
}

// Thresholds returns a copy of the table rows.
func (t *Table) Thresholds() []Threshold {
	out := make([]Threshold, len(t.thresholds))
	copy(out, t.thresholds)
	return out
}

// Len returns the number of levels in the table.
func (t *Table) Len() int {
	return len(t.thresholds)
}

// Threshold returns the row for level, if it exists.
func (t *Table) Threshold(level int) (Threshold, bool) {
	if level < 1 || level > len(t.thresholds) {
		return Threshold{}, false
	}
	return t.thresholds[level-1], true
}

// Info is the display summary for an XP total.
type Info struct {
	Level    int        `json:"level"`
	Name     core.Label `json:"tierName"`
	Progress int        `json:"progressPercent"`
}

// IsUnranked reports whether the info is the unranked sentinel.
func (i Info) IsUnranked() bool {
	return i.Level == 0
}

// LevelInfo finds the highest level whose requirement is at most xp and the
// percentage of the way to the next level. Negative and NaN XP count as 0.
func (t *Table) LevelInfo(xp float64) Info {
	if math.IsNaN(xp) || xp < 0 {
		xp = 0
	}

	n := len(t.thresholds)
	// first row that needs more than xp; the one before it is the current level
	idx := sort.Search(n, func(i int) bool {
		return float64(t.thresholds[i].XPRequired) > xp
	})
	if idx == 0 {
		return Info{Level: 0, Name: Unranked, Progress: 0}
	}

	current := t.thresholds[idx-1]
	if idx == n {
		return Info{Level: current.Level, Name: current.Name, Progress: 100}
	}

	next := t.thresholds[idx]
	span := float64(next.XPRequired - current.XPRequired)
	progress := 100
	if span > 0 {
		progress = int(math.Floor((xp - float64(current.XPRequired)) / span * 100))
		if progress > 100 {
			progress = 100
		}
		if progress < 0 {
			progress = 0
		}
	}

	return Info{Level: current.Level, Name: current.Name, Progress: progress}
}

// LevelInfo evaluates xp against the default table.
func LevelInfo(xp float64) Info {
	return Default().LevelInfo(xp)
}
