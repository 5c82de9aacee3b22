package extract

import (
	"regexp"
	"strings"

	"github.com/ihaichao/remote-job-aggregator/internal/model"
)

var bracketTokenRe = regexp.MustCompile(`[\[【]([^\]】]+)[\]】]`)
var atCompanyRe = regexp.MustCompile(`@\s*([A-Za-z0-9\p{Han}]+)`)

// Role and recruitment filler that shows up inside bracketed company tags:
// "【远程招聘 Acme】" should yield "Acme".
var companyFillers = []string{
	"远程", "兼职", "全职", "长期", "招人", "急招", "招聘", "内推",
}

// Company extracts a best-effort company name from the title. Bracketed
// tokens win, then an "@Company" mention, then the text preceding a 招聘
// marker. Falls back to the Unknown sentinel.
func Company(title string) string {
	for _, m := range bracketTokenRe.FindAllStringSubmatch(title, -1) {
		cleaned := m[1]
		for _, kw := range companyFillers {
			cleaned = strings.ReplaceAll(cleaned, kw, "")
		}
		cleaned = strings.TrimSpace(strings.ReplaceAll(cleaned, " ", ""))
		if len([]rune(cleaned)) >= 2 {
			return cleaned
		}
	}

	if m := atCompanyRe.FindStringSubmatch(title); m != nil {
		return strings.TrimSpace(m[1])
	}

	if i := strings.Index(title, "招聘"); i >= 0 {
		head := strings.TrimSpace(title[:i])
		if n := len([]rune(head)); n > 1 && n < 20 {
			return head
		}
	}

	return model.CompanyUnknown
}
