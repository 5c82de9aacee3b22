// Package extract derives structured fields (region, work type, company,
// fallback category) from raw posting text using deterministic, ordered rule
// tables. Every extractor is pure and total: adversarial free text never
// fails, unmatched input resolves to a defined default.
package extract

import "github.com/ihaichao/remote-job-aggregator/internal/model"

// Profile parameterizes extraction per source, so every adapter shares one
// rule set instead of growing its own near-identical copy.
type Profile struct {
	// DefaultRegion applies when no explicit restriction phrase matches.
	// China-market boards default to CN, international boards to worldwide.
	DefaultRegion string
}

// DefaultProfile is the profile for international sources.
var DefaultProfile = Profile{DefaultRegion: model.RegionWorldwide}

// ChinaProfile is the profile for inherently China-market sources.
var ChinaProfile = Profile{DefaultRegion: model.RegionCN}
