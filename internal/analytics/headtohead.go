package analytics

import (
	"errors"
	"fmt"

	"github.com/stwalsh4118/cobenefits/internal/models"
)

// ErrUnknownLocalAuthority is returned when a head-to-head side does not
// name a local authority in the dataset.
var ErrUnknownLocalAuthority = errors.New("unknown local authority")

// Side is one local authority's benefit sum.
type Side struct {
	LocalAuthority string  `json:"local_authority"`
	Value          float64 `json:"value"`
}

// Matchup compares two local authorities. Difference is A minus B.
type Matchup struct {
	Benefit    string  `json:"benefit"`
	A          Side    `json:"a"`
	B          Side    `json:"b"`
	Difference float64 `json:"difference"`
}

// HeadToHead sums benefit for a and b over the whole, unfiltered region
// table. Both names must be known local authorities; they may be equal.
func HeadToHead(regions *models.RegionTable, benefit, a, b string) (*Matchup, error) {
	if !regions.HasCategory(benefit) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBenefit, benefit)
	}

	known := make(map[string]struct{})
	for _, la := range regions.LocalAuthorities() {
		known[la] = struct{}{}
	}
	for _, name := range []string{a, b} {
		if _, ok := known[name]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownLocalAuthority, name)
		}
	}

	var va, vb float64
	for _, r := range regions.Rows {
		v := r.Benefit(benefit)
		if r.LocalAuthority == a {
			addFinite(&va, v)
		}
		if r.LocalAuthority == b {
			addFinite(&vb, v)
		}
	}

	return &Matchup{
		Benefit:    benefit,
		A:          Side{LocalAuthority: a, Value: va},
		B:          Side{LocalAuthority: b, Value: vb},
		Difference: va - vb,
	}, nil
}

// DefaultPair returns the first two local authorities alphabetically. With a
// single authority both sides are the same; with none ok is false.
func DefaultPair(regions *models.RegionTable) (a, b string, ok bool) {
	locs := regions.LocalAuthorities()
	switch len(locs) {
	case 0:
		return "", "", false
	case 1:
		return locs[0], locs[0], true
	}
	return locs[0], locs[1], true
}
