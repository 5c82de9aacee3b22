package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/ihaichao/remote-job-aggregator/internal/model"
)

// term matches either as a plain substring or, for short ambiguous tokens
// ("go", "ios"), as a word-boundary regex.
type term struct {
	lit string
	re  *regexp.Regexp
}

func lit(s string) term  { return term{lit: s} }
func word(s string) term { return term{re: regexp.MustCompile(`\b` + s + `\b`)} }

// firstMatch returns the earliest match position of the term in text, -1 if absent.
func (t term) firstMatch(text string) int {
	if t.re != nil {
		if loc := t.re.FindStringIndex(text); loc != nil {
			return loc[0]
		}
		return -1
	}
	return strings.Index(text, t.lit)
}

type categoryRule struct {
	cat   model.Category
	terms []term
}

// The fallback keyword table, used when no LLM classifier is configured.
// Game deliberately lists engine/role tokens only: generic "游戏" appears in
// plenty of non-game-dev postings.
var categoryRules = []categoryRule{
	{model.CategoryFrontend, []term{lit("前端"), lit("frontend"), lit("web前端"), lit("react"), lit("vue"), lit("angular")}},
	{model.CategoryBackend, []term{lit("后端"), lit("backend"), lit("服务端"), lit("server"), word("java"), word("php"), word("golang"), word("go"), lit("python"), lit("ruby"), lit("rust"), lit("架构师")}},
	{model.CategoryFullstack, []term{lit("全栈"), lit("fullstack"), lit("full-stack"), lit("full stack")}},
	{model.CategoryMobile, []term{lit("移动开发"), word("ios"), word("android"), lit("flutter"), lit("react native"), lit("app开发"), lit("安卓")}},
	{model.CategoryGame, []term{lit("cocos"), lit("unity"), lit("unreal"), lit("ue4"), lit("ue5"), lit("游戏客户端"), lit("game dev"), lit("游戏引擎")}},
	{model.CategorySecurity, []term{lit("安全"), lit("security"), lit("渗透"), lit("penetration"), lit("red team"), lit("攻防"), lit("infosec"), lit("漏洞")}},
	{model.CategoryQuant, []term{lit("量化"), lit("quantitative"), lit("风控开发"), lit("trading")}},
	{model.CategoryDevops, []term{lit("devops"), word("sre"), lit("运维"), lit("kubernetes"), word("k8s"), lit("docker"), lit("云原生")}},
	{model.CategoryBlockchain, []term{lit("blockchain"), lit("区块链"), lit("web3"), lit("solidity"), lit("smart contract"), lit("合约"), lit("撮合交易")}},
	{model.CategoryAI, []term{lit("machine learning"), lit("机器学习"), lit("人工智能"), lit("data scientist"), word("nlp"), lit("算法工程师"), lit("deep learning")}},
	{model.CategoryTesting, []term{lit("测试工程师"), word("qa"), lit("自动化测试"), lit("test engineer")}},
	{model.CategoryData, []term{lit("数据工程"), lit("data engineer"), lit("数据分析"), lit("data analyst"), lit("etl")}},
	{model.CategoryEmbedded, []term{lit("嵌入式"), lit("embedded"), lit("固件"), lit("firmware"), lit("单片机")}},
}

// Priority categories outrank position-based matches: an explicit
// specialization in the title wins over an incidental backend/frontend
// keyword appearing earlier.
var priorityCategories = []model.Category{
	model.CategoryFullstack, model.CategoryGame, model.CategoryQuant,
	model.CategorySecurity, model.CategoryBlockchain, model.CategoryAI,
	model.CategoryDevops,
}

func priorityIndex(cat model.Category) int {
	for i, c := range priorityCategories {
		if c == cat {
			return i
		}
	}
	return -1
}

// Category is the rule-based fallback classifier. Title matches rank by
// earliest keyword position (priority categories first); when the title is
// silent the description is scanned in table order. Never fails: unmatched
// input is "other".
func Category(title, description string) model.Category {
	titleLower := strings.ToLower(title)
	descLower := strings.ToLower(description)

	type match struct {
		pos int
		cat model.Category
	}
	var matches []match
	for _, rule := range categoryRules {
		pos := -1
		for _, t := range rule.terms {
			p := t.firstMatch(titleLower)
			if p >= 0 && (pos == -1 || p < pos) {
				pos = p
			}
		}
		if pos == -1 {
			continue
		}
		if pi := priorityIndex(rule.cat); pi >= 0 {
			pos = -1000 + pi
		}
		matches = append(matches, match{pos, rule.cat})
	}
	if len(matches) > 0 {
		// Stable: ties at the same position keep table order.
		sort.SliceStable(matches, func(i, j int) bool { return matches[i].pos < matches[j].pos })
		return matches[0].cat
	}

	for _, rule := range categoryRules {
		for _, t := range rule.terms {
			if t.firstMatch(descLower) >= 0 {
				return rule.cat
			}
		}
	}

	return model.CategoryOther
}
