// Package coverage adapts resolved class requirements into the ternary
// NEEDS fields and compliance judgments the reporting pipeline consumes.
// It reads requirement-level data through the resolver only, never from
// the junction tables.
package coverage

import (
	"errors"
	"fmt"

	"github.com/condmon/acm-registry/pkg/standard"
)

// Need is the ternary requirement level for one technology on one asset.
type Need string

const (
	NeedPrimary   Need = "P"
	NeedSecondary Need = "S"
	NeedNone      Need = "N"
)

// Judgment grades one technology on one asset given its need and whether
// the technology is applied.
type Judgment string

const (
	JudgmentCovered       Judgment = "G"
	JudgmentPartial       Judgment = "Y"
	JudgmentCriticalGap   Judgment = "R"
	JudgmentNotApplicable Judgment = "N"
)

// AssetStatus is the single overall category of one asset.
type AssetStatus string

const (
	StatusRed           AssetStatus = "RED"
	StatusGreen         AssetStatus = "GREEN"
	StatusYellow        AssetStatus = "YELLOW"
	StatusNotApplicable AssetStatus = "N"
)

// NeedsForClass returns the NEEDS value for every technology in techs,
// resolved for the given asset class. Technologies the class does not
// require map to NeedNone. An unknown class is a hard stop for that
// asset: the caller must skip it and continue with the rest of the
// batch.
func NeedsForClass(resolver *standard.Resolver, className string, techs []string) (map[string]Need, error) {
	requirements, err := resolver.ResolveClassTechnologies(className)
	if err != nil {
		return nil, fmt.Errorf("resolve needs for class %s: %w", className, err)
	}

	needs := make(map[string]Need, len(techs))
	for _, tech := range techs {
		req, ok := requirements[tech]
		switch {
		case !ok:
			needs[tech] = NeedNone
		case req.ApplicationType == standard.ApplicationPrimary:
			needs[tech] = NeedPrimary
		default:
			needs[tech] = NeedSecondary
		}
	}
	return needs, nil
}

// IsNotFound reports whether the error from NeedsForClass means the
// class is unknown.
func IsNotFound(err error) bool {
	return errors.Is(err, standard.ErrNotFound)
}

// Judge grades one technology: a Primary need without the technology
// applied is a critical gap, a Secondary need without it is partial
// coverage, any satisfied need is covered, and no need is not
// applicable.
func Judge(need Need, has bool) Judgment {
	switch need {
	case NeedPrimary:
		if has {
			return JudgmentCovered
		}
		return JudgmentCriticalGap
	case NeedSecondary:
		if has {
			return JudgmentCovered
		}
		return JudgmentPartial
	default:
		return JudgmentNotApplicable
	}
}

// ClassifyAsset collapses per-technology judgments into one category:
// any critical gap makes the asset RED; otherwise any covered technology
// makes it GREEN; otherwise any partial makes it YELLOW; an asset whose
// judgments are all not-applicable is N.
func ClassifyAsset(judgments []Judgment) AssetStatus {
	hasGreen, hasYellow := false, false
	for _, j := range judgments {
		switch j {
		case JudgmentCriticalGap:
			return StatusRed
		case JudgmentCovered:
			hasGreen = true
		case JudgmentPartial:
			hasYellow = true
		}
	}
	if hasGreen {
		return StatusGreen
	}
	if hasYellow {
		return StatusYellow
	}
	return StatusNotApplicable
}
