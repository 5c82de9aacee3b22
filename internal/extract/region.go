package extract

import (
	"regexp"
	"strings"

	"github.com/ihaichao/remote-job-aggregator/internal/model"
)

// regionRule maps a set of strict restriction patterns to a region value.
// Word-boundary anchors keep short tokens from false-matching inside longer
// words ("apac" inside "Apache").
type regionRule struct {
	region   string
	patterns []*regexp.Regexp
}

func compileAll(exprs ...string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		res[i] = regexp.MustCompile(e)
	}
	return res
}

// Checked in fixed priority order: US → EU → CN → APAC.
var regionRules = []regionRule{
	{model.RegionUS, compileAll(
		`\bus\s*only\b`, `\busa\s*only\b`, `\bus[\s-]*based\b`, `\bus\s*residents?\b`,
		`united\s+states\s+only`, `america\s+only`, `仅限美国`, `美国地区`,
	)},
	{model.RegionEU, compileAll(
		`\beu\s*only\b`, `\beurope\s*only\b`, `\beuropean\s+only\b`,
		`\beu[\s-]*based\b`, `\beurope[\s-]*based\b`, `\bemea\s*only\b`,
		`仅限欧洲`, `欧洲地区`,
	)},
	{model.RegionCN, compileAll(
		`仅限中国`, `中国地区`, `仅限国内`, `国内地区`, `限中国大陆`,
		`\bchina\s*only\b`, `\bchina[\s-]*based\b`,
	)},
	{model.RegionAPAC, compileAll(
		`\bapac\s*only\b`, `\basia\s*only\b`, `\basia[\s-]*pacific\s*only\b`,
		`仅限亚太`, `亚太地区`,
	)},
}

// Explicit offset with a requirement qualifier: "UTC+8 required", "需要配合 UTC-5 时区".
var tzOffsetRe = regexp.MustCompile(`(?:utc|gmt)\s*([+-]\d{1,2})\s*(?:required|时区|工作时间|配合)`)

// Named zones count only when paired with a requirement qualifier; a passing
// mention of "PST" must not restrict the job.
type namedZoneRule struct {
	region string
	re     *regexp.Regexp
}

var namedZoneRules = []namedZoneRule{
	{"UTC-8", regexp.MustCompile(`\b(?:pst|pacific\s+time)\b\s*(?:required|时区|工作时间)`)},
	{"UTC-5", regexp.MustCompile(`\b(?:est|eastern\s+time)\b\s*(?:required|时区|工作时间)`)},
	{"UTC-6", regexp.MustCompile(`\b(?:cst|central\s+time)\b\s*(?:required|时区|工作时间)`)},
	{"UTC+8", regexp.MustCompile(`(?:北京时间|东八区)\s*(?:工作|配合|required)`)},
}

// Region scans text for an explicit region or timezone restriction. Only a
// stated requirement triggers a match; otherwise the profile default applies.
func Region(text string, profile Profile) string {
	lower := strings.ToLower(text)

	for _, rule := range regionRules {
		for _, re := range rule.patterns {
			if re.MatchString(lower) {
				return rule.region
			}
		}
	}

	if m := tzOffsetRe.FindStringSubmatch(lower); m != nil {
		return "UTC" + m[1]
	}

	for _, rule := range namedZoneRules {
		if rule.re.MatchString(lower) {
			return rule.region
		}
	}

	return profile.DefaultRegion
}
