// pkg/rewards/tiers.go
package rewards

import (
	"fmt"
	"math"
	"sort"

	"github.com/rovshanmuradov/launchpad/pkg/bondingcurve"
)

// Tier is a creator reward bracket unlocked by cumulative trading volume.
type Tier struct {
	Name           string  `json:"name" mapstructure:"name"`
	RequiredVolume float64 `json:"required_volume" mapstructure:"required_volume"`
	Multiplier     float64 `json:"multiplier" mapstructure:"multiplier"`
}

// Milestone is a cumulative volume that unlocks a one-off achievement.
type Milestone struct {
	Name   string  `json:"name" mapstructure:"name"`
	Volume float64 `json:"volume" mapstructure:"volume"`
}

// Default tier ladder, volumes in base currency.
var (
	Bronze  = Tier{Name: "Bronze", RequiredVolume: 0, Multiplier: 1.0}
	Silver  = Tier{Name: "Silver", RequiredVolume: 10, Multiplier: 1.25}
	Gold    = Tier{Name: "Gold", RequiredVolume: 50, Multiplier: 1.5}
	Diamond = Tier{Name: "Diamond", RequiredVolume: 200, Multiplier: 2.0}
)

// DefaultTiers returns Bronze < Silver < Gold < Diamond.
func DefaultTiers() []Tier {
	return []Tier{Bronze, Silver, Gold, Diamond}
}

// DefaultMilestones returns the standard achievement volumes.
func DefaultMilestones() []Milestone {
	return []Milestone{
		{Name: "first_steps", Volume: 1},
		{Name: "rising_star", Volume: 10},
		{Name: "trendsetter", Volume: 50},
		{Name: "centurion", Volume: 100},
		{Name: "whale", Volume: 500},
		{Name: "legend", Volume: 1000},
	}
}

// Policy is the immutable reward configuration: an ascending tier ladder, the milestone
// list and the curve whose fee rates define the creator's share of volume.
type Policy struct {
	tiers      []Tier
	milestones []Milestone
	curve      bondingcurve.Curve
}

// NewPolicy validates and copies its arguments.
//
// Tiers must be strictly ascending by RequiredVolume, start at zero volume and carry
// positive multipliers. Milestones are sorted by volume and must be positive and distinct.
func NewPolicy(curve bondingcurve.Curve, tiers []Tier, milestones []Milestone) (Policy, error) {
	if len(tiers) == 0 {
		return Policy{}, fmt.Errorf("%w: at least one tier is required", ErrInvalidPolicy)
	}
	if tiers[0].RequiredVolume != 0 {
		return Policy{}, fmt.Errorf("%w: first tier %q must require zero volume", ErrInvalidPolicy, tiers[0].Name)
	}

	seen := make(map[string]struct{}, len(tiers))
	for i, t := range tiers {
		if t.Name == "" {
			return Policy{}, fmt.Errorf("%w: tier %d has no name", ErrInvalidPolicy, i)
		}
		if _, dup := seen[t.Name]; dup {
			return Policy{}, fmt.Errorf("%w: duplicate tier %q", ErrInvalidPolicy, t.Name)
		}
		seen[t.Name] = struct{}{}

		if !finite(t.Multiplier) || t.Multiplier <= 0 {
			return Policy{}, fmt.Errorf("%w: tier %q multiplier must be positive", ErrInvalidPolicy, t.Name)
		}
		if !finite(t.RequiredVolume) || t.RequiredVolume < 0 {
			return Policy{}, fmt.Errorf("%w: tier %q volume must be non-negative", ErrInvalidPolicy, t.Name)
		}
		if i > 0 && t.RequiredVolume <= tiers[i-1].RequiredVolume {
			return Policy{}, fmt.Errorf("%w: tier %q must require more volume than %q",
				ErrInvalidPolicy, t.Name, tiers[i-1].Name)
		}
	}

	ms := append([]Milestone(nil), milestones...)
	sort.Slice(ms, func(i, j int) bool { return ms[i].Volume < ms[j].Volume })
	for i, m := range ms {
		if !finite(m.Volume) || m.Volume <= 0 {
			return Policy{}, fmt.Errorf("%w: milestone %q volume must be positive", ErrInvalidPolicy, m.Name)
		}
		if i > 0 && m.Volume == ms[i-1].Volume {
			return Policy{}, fmt.Errorf("%w: duplicate milestone volume %g", ErrInvalidPolicy, m.Volume)
		}
	}

	return Policy{
		tiers:      append([]Tier(nil), tiers...),
		milestones: ms,
		curve:      curve,
	}, nil
}

// DefaultPolicy combines the default curve, tiers and milestones.
func DefaultPolicy() Policy {
	p, err := NewPolicy(bondingcurve.MustNew(bondingcurve.DefaultConfig()), DefaultTiers(), DefaultMilestones())
	if err != nil {
		panic(err)
	}
	return p
}

// Curve returns the curve whose fee rates the policy rewards against.
func (p Policy) Curve() bondingcurve.Curve {
	return p.curve
}

// Tiers returns a copy of the ladder.
func (p Policy) Tiers() []Tier {
	return append([]Tier(nil), p.tiers...)
}

// Milestones returns a copy of the milestones, ascending by volume.
func (p Policy) Milestones() []Milestone {
	return append([]Milestone(nil), p.milestones...)
}

// TierFor returns the highest tier whose RequiredVolume does not exceed volume.
func (p Policy) TierFor(volume float64) Tier {
	return p.tiers[p.tierIndexFor(volume)]
}

func (p Policy) tierIndexFor(volume float64) int {
	idx := 0
	for i, t := range p.tiers {
		if t.RequiredVolume > volume {
			break
		}
		idx = i
	}
	return idx
}

// tierIndex returns the ladder position of a tier name, or -1.
func (p Policy) tierIndex(name string) int {
	for i, t := range p.tiers {
		if t.Name == name {
			return i
		}
	}
	return -1
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
