package relevance

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ihaichao/remote-job-aggregator/internal/llm"
)

// descExcerptLen bounds the description excerpt sent to the model.
const descExcerptLen = 500

const judgePrompt = `你是一个智能招聘信息分类器。你的任务是判断给出的文本是"JOB_AD"（招聘启事）还是"OTHER"（其他非招聘内容）。

### 判定标准：
- **JOB_AD**: 只要是在"找人干活"、"招人"、"招聘"、"寻找合作伙伴/技术合伙人"且涉及报酬或项目合作，都属于招聘。
- **OTHER**: 个人求职简历、程序员故事分享、技术讨论、单纯的产品展示、没有报酬的兴趣小组、教程、新闻。

### 示例：
- "招聘 React 开发，时薪 200" -> JOB_AD
- "寻找初创团队技术合伙人" -> JOB_AD
- "兼职：需要一个设计做 2 天详情页" -> JOB_AD
- "分享一下我工作 10 年的心得" -> OTHER
- "我用 Golang 写了个开源工具" -> OTHER
- "5 年 Java 求职远程" -> OTHER（这是简历）

### 请判断以下内容：
标题: %s
内容: %s

回答要求：只输出一个单词（JOB_AD 或 OTHER），不要解释。
输出:`

// SemanticFilter is the asynchronous stage-2 gate: it asks a language model
// for a strict binary JOB_AD/OTHER label. Any transport or parse failure
// fails open: a missed filter beats a silently dropped real posting.
type SemanticFilter struct {
	provider llm.Provider
	logger   *slog.Logger
}

// NewSemanticFilter creates the LLM-backed relevance judge.
func NewSemanticFilter(provider llm.Provider, logger *slog.Logger) *SemanticFilter {
	return &SemanticFilter{provider: provider, logger: logger}
}

// Admit reports whether the model labels the posting a genuine job ad.
func (f *SemanticFilter) Admit(ctx context.Context, title, description string) bool {
	excerpt := []rune(description)
	if len(excerpt) > descExcerptLen {
		excerpt = excerpt[:descExcerptLen]
	}

	answer, err := f.provider.Complete(ctx, fmt.Sprintf(judgePrompt, title, string(excerpt)))
	if err != nil {
		f.logger.Warn("semantic filter unavailable, failing open",
			"title", truncate(title, 40),
			"error", err,
		)
		return true
	}

	admitted := strings.Contains(strings.ToUpper(answer), "JOB")
	f.logger.Debug("semantic filter decision",
		"title", truncate(title, 40),
		"admitted", admitted,
	)
	return admitted
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
