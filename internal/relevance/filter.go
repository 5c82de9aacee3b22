package relevance

import (
	"context"

	"github.com/ihaichao/remote-job-aggregator/internal/model"
)

// Filter chains the two stages. A posting must pass both; stage 1 exists to
// cheaply reject the bulk of community noise before the model call.
type Filter struct {
	rules    *RuleFilter
	semantic *SemanticFilter
}

// NewFilter wires both stages together.
func NewFilter(rules *RuleFilter, semantic *SemanticFilter) *Filter {
	return &Filter{rules: rules, semantic: semantic}
}

// Admit runs stage 1 then stage 2 on the posting.
func (f *Filter) Admit(ctx context.Context, p model.RawPosting) bool {
	if !f.rules.Admit(p.Title, p.Description) {
		return false
	}
	return f.semantic.Admit(ctx, p.Title, p.Description)
}
