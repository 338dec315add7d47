package grading

import (
	"math"
	"sort"
)

// Grade is one of the four certificate grade buckets
type Grade string

const (
	GradeVG7   Grade = "VG 7"
	GradeNM8   Grade = "NM 8"
	GradeMint9 Grade = "Mint 9"
	GradeGem10 Grade = "Gem 10"
)

// Subgrade names
const (
	Centering = "centering"
	Corners   = "corners"
	Edges     = "edges"
	Surface   = "surface"
)

// Heuristic constants. The offsets and scales carry no derivation beyond
// being the fixed values every issued certificate has been scored with.
const (
	// WorkingSize is the square resolution every image is resampled to
	WorkingSize = 512
	// CornerRegionSize is the side of the top-left region used for corner noise
	CornerRegionSize = 64

	MinSubgrade = 0.0
	MaxSubgrade = 10.0

	BrightnessOffset = 30.0
	BrightnessScale  = 15.0
	CornerNoiseScale = 6.0
	SharpnessScale   = 8.0

	Gem10Threshold = 9.5
	Mint9Threshold = 8.5
	NM8Threshold   = 7.5
)

// Grades returns every grade bucket ordered worst to best
func Grades() []Grade {
	return []Grade{GradeVG7, GradeNM8, GradeMint9, GradeGem10}
}

// SubgradeNames returns the four subgrade keys in display order
func SubgradeNames() []string {
	return []string{Centering, Corners, Edges, Surface}
}

// ParseGrade returns the grade matching label, or false if label is not a known bucket
func ParseGrade(label string) (Grade, bool) {
	for _, g := range Grades() {
		if string(g) == label {
			return g, true
		}
	}
	return "", false
}

// Subgrades maps subgrade names to scores in [0,10]
type Subgrades map[string]float64

// Validate checks that every key is a known subgrade and every value is in range
func (s Subgrades) Validate() error {
	for name, value := range s {
		if !isSubgradeName(name) {
			return &SubgradeError{Name: name, Reason: "unknown subgrade"}
		}
		if math.IsNaN(value) || value < MinSubgrade || value > MaxSubgrade {
			return &SubgradeError{Name: name, Reason: "value must be between 0 and 10"}
		}
	}
	return nil
}

// Names returns the subgrade keys present, sorted
func (s Subgrades) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SubgradeError describes an invalid supplied subgrade
type SubgradeError struct {
	Name   string
	Reason string
}

func (e *SubgradeError) Error() string {
	return e.Name + ": " + e.Reason
}

func isSubgradeName(name string) bool {
	for _, n := range SubgradeNames() {
		if n == name {
			return true
		}
	}
	return false
}

// Signals are the raw measurements taken from the working-resolution image
type Signals struct {
	Sharpness   float64 `json:"sharpness"`
	Brightness  float64 `json:"brightness"`
	CornerNoise float64 `json:"corner_noise"`
}

// Result is the outcome of scoring one image
type Result struct {
	Grade     Grade     `json:"grade"`
	Subgrades Subgrades `json:"subgrades"`
	Overall   float64   `json:"overall"`
	Signals   Signals   `json:"signals"`
}

// Evaluate maps raw signals to subgrades, an overall score and a grade
func Evaluate(sig Signals) Result {
	edgesRaw := sig.Sharpness / SharpnessScale
	centeringRaw := (sig.Brightness - BrightnessOffset) / BrightnessScale

	edges := clamp(edgesRaw)
	centering := clamp(centeringRaw)
	corners := clamp(MaxSubgrade - sig.CornerNoise/CornerNoiseScale)
	// surface averages the unclamped edges and centering values
	surface := clamp((edgesRaw + centeringRaw) / 2)

	sub := Subgrades{
		Centering: roundTenth(centering),
		Corners:   roundTenth(corners),
		Edges:     roundTenth(edges),
		Surface:   roundTenth(surface),
	}
	overall := roundTenth((sub[Centering] + sub[Corners] + sub[Edges] + sub[Surface]) / 4)

	return Result{
		Grade:     GradeFor(overall),
		Subgrades: sub,
		Overall:   overall,
		Signals:   sig,
	}
}

// GradeFor maps an overall score to its grade bucket, highest threshold first
func GradeFor(overall float64) Grade {
	switch {
	case overall >= Gem10Threshold:
		return GradeGem10
	case overall >= Mint9Threshold:
		return GradeMint9
	case overall >= NM8Threshold:
		return GradeNM8
	default:
		return GradeVG7
	}
}

func clamp(v float64) float64 {
	return math.Max(MinSubgrade, math.Min(MaxSubgrade, v))
}

// roundTenth rounds to one decimal place, halves away from zero
func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
