package extract

import (
	"strings"

	"github.com/ihaichao/remote-job-aggregator/internal/model"
)

// Contract is checked before part-time: "合约兼职" postings are contracts
// that happen to mention part-time hours.
var contractKeywords = []string{
	"合约", "外包", "contract", "contractor", "项目制",
}

var parttimeKeywords = []string{
	"兼职", "part-time", "part time", "parttime", "freelance",
	"自由职业", "实习", "intern",
}

// Tag names some boards attach that settle the work type outright.
var parttimeTags = map[string]bool{"线上兼职": true, "线下兼职": true}
var fulltimeTags = map[string]bool{"全职远程": true, "全职坐班": true}

// WorkType resolves fulltime/parttime/contract from free text.
// Default is fulltime: boards in scope list majority full-time roles unless
// stated otherwise.
func WorkType(text string) string {
	lower := strings.ToLower(text)
	for _, kw := range contractKeywords {
		if strings.Contains(lower, kw) {
			return model.WorkTypeContract
		}
	}
	for _, kw := range parttimeKeywords {
		if strings.Contains(lower, kw) {
			return model.WorkTypeParttime
		}
	}
	return model.WorkTypeFulltime
}

// WorkTypeFromTags prefers explicit source tags, falling back to the
// keyword rules over the tags and text together. API feeds deliver the
// employment type as a tag ("contractor", "parttime") rather than in the
// posting text.
func WorkTypeFromTags(tags []string, text string) string {
	for _, tag := range tags {
		if parttimeTags[tag] {
			return model.WorkTypeParttime
		}
		if fulltimeTags[tag] {
			return model.WorkTypeFulltime
		}
	}
	if len(tags) > 0 {
		text = strings.Join(tags, " ") + "\n" + text
	}
	return WorkType(text)
}
