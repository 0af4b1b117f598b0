package cart

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidTiers = errors.New("cart: invalid discount tiers")

// Tier maps a range of total units to a percentage discount. Max == 0 leaves
// the range open at the top, so a closed tier always has Max >= 1; a [0,0]
// tier cannot be written and is never needed since an empty cart gets no
// discount.
type Tier struct {
	Min     int `json:"min"`
	Max     int `json:"max,omitempty"`
	Percent int `json:"discount"`
}

func (t Tier) Open() bool { return t.Max == 0 }

func (t Tier) Contains(units int) bool {
	return units >= t.Min && (t.Open() || units <= t.Max)
}

func (t Tier) String() string {
	if t.Open() {
		return fmt.Sprintf("%d+:%d", t.Min, t.Percent)
	}
	return fmt.Sprintf("%d-%d:%d", t.Min, t.Max, t.Percent)
}

// Tiers must be sorted by Min and must not overlap; only the last one may be open.
type Tiers []Tier

func DefaultIngredientTiers() Tiers {
	return Tiers{
		{Min: 10, Max: 24, Percent: 5},
		{Min: 25, Max: 49, Percent: 10},
		{Min: 50, Max: 99, Percent: 15},
		{Min: 100, Percent: 20},
	}
}

func (ts Tiers) Validate() error {
	for i, t := range ts {
		switch {
		case t.Min < 0:
			return fmt.Errorf("%w: tier %d has negative min", ErrInvalidTiers, i)
		case t.Max < 0 || (!t.Open() && t.Max < t.Min):
			return fmt.Errorf("%w: tier %d has max below min", ErrInvalidTiers, i)
		case t.Percent < 0 || t.Percent > 100:
			return fmt.Errorf("%w: tier %d percent %d out of range", ErrInvalidTiers, i, t.Percent)
		case t.Open() && i != len(ts)-1:
			return fmt.Errorf("%w: only the last tier may be open-ended", ErrInvalidTiers)
		}
		if i > 0 && t.Min <= ts[i-1].Max {
			return fmt.Errorf("%w: tier %d overlaps or is out of order", ErrInvalidTiers, i)
		}
	}
	return nil
}

// PercentFor returns the discount of the tier containing units, or 0.
func (ts Tiers) PercentFor(units int) int {
	for _, t := range ts {
		if t.Contains(units) {
			return t.Percent
		}
	}
	return 0
}

func (ts Tiers) String() string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return strings.Join(parts, ",")
}

// ParseTiers reads the "10-24:5,25-49:10,100+:20" form used in configuration.
func ParseTiers(s string) (Tiers, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var out Tiers
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		rng, pct, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("%w: %q missing percent", ErrInvalidTiers, part)
		}
		var t Tier
		var err error
		if t.Percent, err = strconv.Atoi(strings.TrimSpace(pct)); err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidTiers, part, err)
		}
		rng = strings.TrimSpace(rng)
		if lo, found := strings.CutSuffix(rng, "+"); found {
			if t.Min, err = strconv.Atoi(lo); err != nil {
				return nil, fmt.Errorf("%w: %q: %v", ErrInvalidTiers, part, err)
			}
		} else {
			lo, hi, ok := strings.Cut(rng, "-")
			if !ok {
				return nil, fmt.Errorf("%w: %q missing range", ErrInvalidTiers, part)
			}
			if t.Min, err = strconv.Atoi(lo); err != nil {
				return nil, fmt.Errorf("%w: %q: %v", ErrInvalidTiers, part, err)
			}
			if t.Max, err = strconv.Atoi(hi); err != nil {
				return nil, fmt.Errorf("%w: %q: %v", ErrInvalidTiers, part, err)
			}
			if t.Max == 0 {
				return nil, fmt.Errorf("%w: %q closed range needs max >= 1 (write %s+ for open-ended)", ErrInvalidTiers, part, strings.TrimSpace(lo))
			}
		}
		out = append(out, t)
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}
