package relevance

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/ihaichao/remote-job-aggregator/internal/model"
)

// stubProvider returns a canned answer or error.
type stubProvider struct {
	answer string
	err    error
	called bool
}

func (p *stubProvider) Complete(_ context.Context, _ string) (string, error) {
	p.called = true
	return p.answer, p.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRuleFilterAdmit(t *testing.T) {
	tests := []struct {
		name        string
		title       string
		description string
		want        bool
	}{
		{
			name:  "genuine bilingual posting",
			title: "招聘 React 前端开发",
			want:  true,
		},
		{
			name:  "resume with job seeking marker",
			title: "5年Java求职远程",
			want:  false,
		},
		{
			name:  "years of experience resume",
			title: "Java developer 10 years exp",
			want:  false,
		},
		{
			name:  "no job signal at all",
			title: "远程生活方式随想",
			want:  false,
		},
		{
			name:  "first person without hiring marker",
			title: "我用 React 做了个工具",
			want:  false,
		},
		{
			name:  "first person with hiring marker",
			title: "我司招聘 React 工程师",
			want:  true,
		},
		{
			name:  "showcase marker",
			title: "开源了一个 Golang 框架",
			want:  false,
		},
		{
			name:        "signal only in description",
			title:       "远程岗位",
			description: "need a senior Golang developer",
			want:        true,
		},
		{
			name:  "english job seeker",
			title: "React developer looking for work",
			want:  false,
		},
	}
	f := NewRuleFilter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := f.Admit(tt.title, tt.description)
			if got != tt.want {
				t.Errorf("Admit(%q, %q) = %v, want %v", tt.title, tt.description, got, tt.want)
			}
		})
	}
}

func TestSemanticFilterAdmit(t *testing.T) {
	tests := []struct {
		name     string
		provider *stubProvider
		want     bool
	}{
		{name: "positive token", provider: &stubProvider{answer: "JOB_AD"}, want: true},
		{name: "positive token lowercase", provider: &stubProvider{answer: "job_ad"}, want: true},
		{name: "negative token", provider: &stubProvider{answer: "OTHER"}, want: false},
		{name: "chatty but positive", provider: &stubProvider{answer: "答案是 JOB_AD。"}, want: true},
		{name: "transport error fails open", provider: &stubProvider{err: errors.New("conn refused")}, want: true},
		{name: "empty answer rejects", provider: &stubProvider{answer: ""}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewSemanticFilter(tt.provider, discardLogger())
			got := f.Admit(context.Background(), "招聘工程师", "远程")
			if got != tt.want {
				t.Errorf("Admit() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilterStageOrder(t *testing.T) {
	// Stage 2 must not run when stage 1 rejects.
	provider := &stubProvider{answer: "JOB_AD"}
	f := NewFilter(NewRuleFilter(), NewSemanticFilter(provider, discardLogger()))

	rejected := model.RawPosting{Title: "5年Java求职远程"}
	if f.Admit(context.Background(), rejected) {
		t.Fatalf("exclusion-marker title passed the combined filter")
	}
	if provider.called {
		t.Errorf("semantic stage was invoked for a stage-1 reject")
	}

	admitted := model.RawPosting{Title: "招聘 React 前端开发", Description: "远程办公"}
	if !f.Admit(context.Background(), admitted) {
		t.Fatalf("genuine posting rejected")
	}
	if !provider.called {
		t.Errorf("semantic stage was not invoked for a stage-1 pass")
	}
}
