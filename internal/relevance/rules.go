// Package relevance implements the two-stage admission gate deciding whether
// a raw posting is a genuine job advertisement for a technical role. Stage 1
// is a cheap deterministic rule filter; stage 2 asks a language model and
// fails open so transient model outages never drop real postings.
package relevance

import (
	"regexp"
	"strings"
)

// Job-indicator keywords: at least one must appear in title+description.
// Language-agnostic role and tech nouns.
var jobKeywords = []string{
	"developer", "engineer", "programmer", "architect", "前端", "后端",
	"开发", "工程师", "全栈", "ios", "android", "flutter", "react", "vue",
	"python", "java", "golang", "rust", "node", "typescript",
	"招聘", "诚招", "寻找伙伴", "招人", "solidity", "web3", "区块链",
	"blockchain", "devops", "sre", "运维", "测试", "qa",
	"嵌入式", "embedded", "算法", "machine learning",
}

// Exclusion markers in the title: self-introduction, resumes, job seeking,
// stories, tutorials, community discussion. A match rejects outright.
var excludeKeywords = []string{
	"求职", "寻找机会", "找工作", "求兼职", "找兼职", "找远程", "在找",
	"接活", "接单", "接私活", "老兵", "求带", "本人", "自我介绍",
	"介绍一下自己", "我是", "目前是", "目前在", "个人简介", "个人简历",
	"我的经历", "多年经验", "项目经验", "求推荐", "求指点", "求关注",
	"分享", "教程", "感悟", "转行", "求助", "咨询", "防骗", "曝光",
	"问卷", "调查", "我开发的", "开源了", "心得", "故事", "作品",
	"项目展示", "如何", "探讨", "思考", "谈谈", "看法", "评价",
	"讨论", "抽奖", "回馈",
	"looking for work", "seeking opportunities", "my resume", "for hire",
	"i built", "i made", "show hn", "ask hn",
}

// "5 年 Java 经验" style titles are resumes, not postings.
var resumeExperienceRe = regexp.MustCompile(`(?i)\d+\s*(?:年|years?)[^,，。]{0,12}(?:经验|exp)`)

// RuleFilter is the synchronous stage-1 gate.
type RuleFilter struct{}

// NewRuleFilter returns the deterministic rule filter.
func NewRuleFilter() *RuleFilter { return &RuleFilter{} }

// Admit reports whether the posting survives the rule gate: a job-indicator
// keyword must match somewhere, no exclusion marker may appear in the title,
// and a first-person title without an explicit hiring marker is treated as
// self-promotion.
func (f *RuleFilter) Admit(title, description string) bool {
	titleLower := strings.ToLower(title)
	text := titleLower + " " + strings.ToLower(description)

	hasJobSignal := false
	for _, kw := range jobKeywords {
		if strings.Contains(text, kw) {
			hasJobSignal = true
			break
		}
	}
	if !hasJobSignal {
		return false
	}

	for _, kw := range excludeKeywords {
		if strings.Contains(titleLower, kw) {
			return false
		}
	}

	if resumeExperienceRe.MatchString(title) {
		return false
	}

	if strings.Contains(title, "我") && !strings.Contains(title, "招聘") {
		return false
	}

	return true
}
