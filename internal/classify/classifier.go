// Package classify produces a validated multi-label category set for a
// posting. The primary path is a probabilistic proposal from a language
// model followed by the deterministic correction layer; the fallback path
// is the pure rule extractor. Both always yield a non-empty set drawn from
// the fixed taxonomy.
package classify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ihaichao/remote-job-aggregator/internal/extract"
	"github.com/ihaichao/remote-job-aggregator/internal/llm"
	"github.com/ihaichao/remote-job-aggregator/internal/model"
)

// Classifier maps a posting's text to taxonomy categories.
type Classifier interface {
	Classify(ctx context.Context, title, description string) []model.Category
}

const classifyPrompt = `你是一个严格的职位分类器。从下面的固定分类键中为职位选择 1 到 3 个，用英文逗号分隔输出，不要解释：
frontend, backend, fullstack, mobile, game, devops, ai, blockchain, quant, security, testing, data, embedded, other

规则：
- 只能输出上面列出的分类键，不要发明新的。
- fullstack 仅当标题中明确出现"全栈"或 "full-stack"/"fullstack" 字样时使用。
- 非开发岗位（销售、客服、市场、运营等）一律输出 other。
- 无法判断时输出 other。

职位标题: %s
输出:`

// LLMClassifier asks a language model for categories, then runs the
// correction layer over the proposal. Any transport or parse failure fails
// safe to ["other"]: a classification error must not risk mislabeling.
type LLMClassifier struct {
	provider llm.Provider
	logger   *slog.Logger
}

// NewLLMClassifier creates the model-backed classifier.
func NewLLMClassifier(provider llm.Provider, logger *slog.Logger) *LLMClassifier {
	return &LLMClassifier{provider: provider, logger: logger}
}

// Classify returns a corrected, non-empty category set for the title.
func (c *LLMClassifier) Classify(ctx context.Context, title, _ string) []model.Category {
	answer, err := c.provider.Complete(ctx, fmt.Sprintf(classifyPrompt, title))
	if err != nil {
		c.logger.Warn("classifier unavailable, failing safe to other",
			"title", truncate(title, 40),
			"error", err,
		)
		return []model.Category{model.CategoryOther}
	}
	return Correct(title, parseCategories(answer))
}

// parseCategories extracts taxonomy keys from a comma-separated model reply,
// dropping anything outside the taxonomy and duplicates.
func parseCategories(answer string) []model.Category {
	fields := strings.FieldsFunc(answer, func(r rune) bool {
		return r == ',' || r == '，' || r == '、' || r == '\n'
	})
	seen := make(map[model.Category]bool)
	var cats []model.Category
	for _, f := range fields {
		key := strings.ToLower(strings.TrimSpace(f))
		if !model.ValidCategory(key) {
			continue
		}
		c := model.Category(key)
		if !seen[c] {
			seen[c] = true
			cats = append(cats, c)
		}
	}
	return cats
}

// RuleClassifier is the deterministic fallback used when no model is
// configured. It reuses the extraction rule table, then the same correction
// layer for consistency with the primary path.
type RuleClassifier struct{}

// NewRuleClassifier returns the keyword-table classifier.
func NewRuleClassifier() *RuleClassifier { return &RuleClassifier{} }

// Classify derives a single category from the rule table.
func (c *RuleClassifier) Classify(_ context.Context, title, description string) []model.Category {
	return Correct(title, []model.Category{extract.Category(title, description)})
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
