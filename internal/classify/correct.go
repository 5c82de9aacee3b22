package classify

import (
	"strings"

	"github.com/ihaichao/remote-job-aggregator/internal/model"
)

// The correction layer: a fixed, ordered, keyword-gated rule table applied
// after every model call. Small models routinely ignore prompt rules, so the
// taxonomy constraints are enforced deterministically here. Idempotent:
// Correct(title, Correct(title, cats)) == Correct(title, cats).

// evidenceRules remove a category when the title lacks explicit evidence for
// it. These are the labels cheap models over-assign from description noise.
var evidenceRules = []struct {
	cat      model.Category
	keywords []string
}{
	{model.CategoryFullstack, []string{"全栈", "fullstack", "full-stack", "full stack"}},
	{model.CategoryTesting, []string{"测试", "qa", "test"}},
	{model.CategoryAI, []string{"ai", "ml", "算法", "机器学习", "人工智能", "machine learning", "deep learning", "llm", "nlp"}},
	{model.CategoryBlockchain, []string{"区块链", "blockchain", "web3", "solidity", "合约", "crypto"}},
}

// forceRules add a category on a strong title signal (or remove it when the
// signal is absent) and strip backend/frontend unless those carry their own
// title evidence: an "iOS 开发" posting that mentions an API server is still
// a mobile job.
var forceRules = []struct {
	cat      model.Category
	keywords []string
	strips   []model.Category
}{
	{model.CategoryMobile,
		[]string{"ios", "android", "安卓", "flutter", "react native", "移动端", "app开发"},
		[]model.Category{model.CategoryBackend, model.CategoryFrontend}},
	{model.CategoryGame,
		[]string{"unity", "unreal", "cocos", "ue4", "ue5", "游戏客户端", "游戏开发", "游戏引擎"},
		[]model.Category{model.CategoryBackend, model.CategoryFrontend}},
}

// independentEvidence is what lets backend/frontend survive a force strip.
var independentEvidence = map[model.Category][]string{
	model.CategoryBackend:  {"后端", "backend", "服务端", "server"},
	model.CategoryFrontend: {"前端", "frontend", "web前端"},
}

// Titles for these roles are not developer positions regardless of what the
// model returned.
var nonDevKeywords = []string{
	"sales", "销售", "customer success", "客户成功",
	"solutions engineer", "售前", "account executive", "客服",
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// Correct applies the rule table to a proposed category set and returns a
// valid, non-empty result.
func Correct(title string, cats []model.Category) []model.Category {
	titleLower := strings.ToLower(title)

	set := make(map[model.Category]bool, len(cats))
	var order []model.Category
	add := func(c model.Category) {
		if !set[c] {
			set[c] = true
			order = append(order, c)
		}
	}
	remove := func(c model.Category) { delete(set, c) }
	for _, c := range cats {
		add(c)
	}

	for _, rule := range evidenceRules {
		if set[rule.cat] && !containsAny(titleLower, rule.keywords) {
			remove(rule.cat)
		}
	}

	for _, rule := range forceRules {
		if containsAny(titleLower, rule.keywords) {
			add(rule.cat)
			for _, s := range rule.strips {
				if !containsAny(titleLower, independentEvidence[s]) {
					remove(s)
				}
			}
		} else {
			remove(rule.cat)
		}
	}

	if containsAny(titleLower, nonDevKeywords) {
		return []model.Category{model.CategoryOther}
	}

	var out []model.Category
	for _, c := range order {
		if set[c] {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return []model.Category{model.CategoryOther}
	}
	if len(out) > 1 {
		// A real category always beats the catch-all.
		withoutOther := out[:0:0]
		for _, c := range out {
			if c != model.CategoryOther {
				withoutOther = append(withoutOther, c)
			}
		}
		if len(withoutOther) > 0 {
			out = withoutOther
		}
	}
	return out
}
