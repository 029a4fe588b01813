package particle

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
)

// Range is a closed interval a preset value is sampled from.
// Min == Max describes a fixed value.
type Range struct {
	Min float64
	Max float64
}

// Fixed returns a Range that always samples v.
func Fixed(v float64) Range {
	return Range{Min: v, Max: v}
}

// Between returns the Range [min, max].
func Between(min, max float64) Range {
	return Range{Min: min, Max: max}
}

// IsFixed reports whether the range has a single value.
func (r Range) IsFixed() bool {
	return r.Min == r.Max
}

// Mid returns the midpoint of the range.
func (r Range) Mid() float64 {
	return (r.Min + r.Max) / 2
}

// Sample draws a value from the range using rng.
// A nil rng falls back to the package-level source.
func (r Range) Sample(rng *rand.Rand) float64 {
	if r.Min >= r.Max {
		return r.Min
	}
	if rng == nil {
		return RandomInRange(r.Min, r.Max)
	}
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// String formats the range in the same notation ParseValue accepts.
func (r Range) String() string {
	if r.IsFixed() {
		return strconv.FormatFloat(r.Min, 'g', -1, 64)
	}
	return fmt.Sprintf("[%s %s]",
		strconv.FormatFloat(r.Min, 'g', -1, 64),
		strconv.FormatFloat(r.Max, 'g', -1, 64))
}

// ParseValue parses a preset value string.
// Supports the formats used in effect preset files:
//   - Fixed value: "20" → Range{20, 20}
//   - Range: "[20 50]" → Range{20, 50}
//   - Single bracketed value: "[0.3]" → Range{0.3, 0.3}
//
// An empty string parses to the zero Range. Reversed bounds are swapped.
func ParseValue(s string) (Range, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Range{}, nil
	}

	// 范围格式 "[min max]" 或 "[value]"
	if strings.HasPrefix(s, "[") {
		if !strings.HasSuffix(s, "]") {
			return Range{}, fmt.Errorf("unterminated range %q", s)
		}
		inner := strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
		parts := strings.Fields(inner)
		switch len(parts) {
		case 1:
			v, err := strconv.ParseFloat(parts[0], 64)
			if err != nil {
				return Range{}, fmt.Errorf("invalid value in %q: %w", s, err)
			}
			return Fixed(v), nil
		case 2:
			min, err := strconv.ParseFloat(parts[0], 64)
			if err != nil {
				return Range{}, fmt.Errorf("invalid range min in %q: %w", s, err)
			}
			max, err := strconv.ParseFloat(parts[1], 64)
			if err != nil {
				return Range{}, fmt.Errorf("invalid range max in %q: %w", s, err)
			}
			if min > max {
				min, max = max, min
			}
			return Between(min, max), nil
		default:
			return Range{}, fmt.Errorf("range %q must have one or two values", s)
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Range{}, fmt.Errorf("invalid value %q: %w", s, err)
	}
	return Fixed(v), nil
}

// RandomInRange returns a random float64 in the range [min, max].
func RandomInRange(min, max float64) float64 {
	if min >= max {
		return min
	}
	return min + rand.Float64()*(max-min)
}
