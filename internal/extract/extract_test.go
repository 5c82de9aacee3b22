package extract

import (
	"testing"

	"github.com/ihaichao/remote-job-aggregator/internal/model"
)

func TestWorkType(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "default fulltime", text: "Remote Backend Engineer", want: model.WorkTypeFulltime},
		{name: "parttime chinese", text: "远程办公，兼职", want: model.WorkTypeParttime},
		{name: "parttime hyphenated", text: "Part-time React role", want: model.WorkTypeParttime},
		{name: "freelance is parttime", text: "freelance designer-turned-dev gig", want: model.WorkTypeParttime},
		{name: "contract english", text: "6 month contract, remote", want: model.WorkTypeContract},
		{name: "contract chinese outsourcing", text: "外包项目，远程", want: model.WorkTypeContract},
		{name: "contract wins over parttime mention", text: "合约制，可兼职", want: model.WorkTypeContract},
		{name: "empty text", text: "", want: model.WorkTypeFulltime},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WorkType(tt.text); got != tt.want {
				t.Errorf("WorkType(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestWorkTypeFromTags(t *testing.T) {
	tests := []struct {
		name string
		tags []string
		text string
		want string
	}{
		{name: "parttime tag wins", tags: []string{"线上兼职"}, text: "全职职位", want: model.WorkTypeParttime},
		{name: "fulltime tag wins", tags: []string{"全职远程"}, text: "兼职", want: model.WorkTypeFulltime},
		{name: "unknown tags fall back to text", tags: []string{"招聘"}, text: "兼职前端", want: model.WorkTypeParttime},
		{name: "employment type delivered as tag", tags: []string{"contractor"}, text: "Backend Engineer", want: model.WorkTypeContract},
		{name: "no tags", tags: nil, text: "", want: model.WorkTypeFulltime},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WorkTypeFromTags(tt.tags, tt.text); got != tt.want {
				t.Errorf("WorkTypeFromTags(%v, %q) = %q, want %q", tt.tags, tt.text, got, tt.want)
			}
		})
	}
}

func TestCompany(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{name: "square brackets", title: "[Acme] Backend Engineer", want: "Acme"},
		{name: "cjk brackets with filler", title: "【远程招聘 字节工坊】前端开发", want: "字节工坊"},
		{name: "filler-only bracket skipped", title: "【急招】产品开发 @Acme", want: "Acme"},
		{name: "recruit marker separator", title: "小红书团队招聘全栈工程师", want: "小红书团队"},
		{name: "no signal", title: "Remote Backend Engineer", want: model.CompanyUnknown},
		{name: "single char head too short", title: "我招聘工程师", want: model.CompanyUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Company(tt.title); got != tt.want {
				t.Errorf("Company(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestCategory(t *testing.T) {
	tests := []struct {
		name        string
		title       string
		description string
		want        model.Category
	}{
		{name: "frontend chinese", title: "招聘 React 前端开发", want: model.CategoryFrontend},
		{name: "earliest position wins", title: "后端 / 前端工程师", want: model.CategoryBackend},
		{name: "priority beats position", title: "后端出身的全栈工程师", want: model.CategoryFullstack},
		{name: "game engine keyword", title: "Unity 客户端开发", want: model.CategoryGame},
		{name: "go word boundary", title: "Go developer wanted", want: model.CategoryBackend},
		{name: "google is not go", title: "Google Sheets consultant", want: model.CategoryOther},
		{name: "description fallback", title: "远程工程师", description: "负责 kubernetes 集群运维", want: model.CategoryDevops},
		{name: "quant priority", title: "python 量化研究员", want: model.CategoryQuant},
		{name: "embedded", title: "嵌入式固件工程师", want: model.CategoryEmbedded},
		{name: "testing", title: "自动化测试工程师", want: model.CategoryTesting},
		{name: "no match is other", title: "远程岗位", description: "好机会", want: model.CategoryOther},
		{name: "empty input", title: "", description: "", want: model.CategoryOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Category(tt.title, tt.description); got != tt.want {
				t.Errorf("Category(%q, %q) = %q, want %q", tt.title, tt.description, got, tt.want)
			}
		})
	}
}
