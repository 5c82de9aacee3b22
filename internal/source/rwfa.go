package source

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/ihaichao/remote-job-aggregator/internal/model"
)

const (
	rwfaBaseURL      = "https://www.realworkfromanywhere.com"
	rwfaEngineerPath = "/remote-engineer-jobs"
	rwfaMaxPages     = 15
)

var (
	rwfaHoursAgoRe  = regexp.MustCompile(`(\d+)\s*hours?\s*ago`)
	rwfaDaysAgoRe   = regexp.MustCompile(`(\d+)\s*days?\s*ago`)
	rwfaWeeksAgoRe  = regexp.MustCompile(`(\d+)\s*weeks?\s*ago`)
	rwfaMonthsAgoRe = regexp.MustCompile(`(\d+)\s*months?\s*ago`)
)

// RWFAAdapter scrapes engineer listings from realworkfromanywhere.com.
// The site has no API, so listings are parsed out of the HTML job cards.
// Every listing on the board is remote worldwide.
type RWFAAdapter struct {
	client  *http.Client
	baseURL string
	now     func() time.Time
}

// NewRWFAAdapter creates an adapter for the RWFA engineer-jobs board.
func NewRWFAAdapter(client *http.Client) *RWFAAdapter {
	return &RWFAAdapter{
		client:  client,
		baseURL: rwfaBaseURL,
		now:     time.Now,
	}
}

// FetchPostings pages through the engineer listings until a page yields no
// job cards.
func (a *RWFAAdapter) FetchPostings(ctx context.Context) ([]model.RawPosting, error) {
	seen := make(map[string]bool)
	var postings []model.RawPosting
	for page := 1; page <= rwfaMaxPages; page++ {
		url := a.baseURL + rwfaEngineerPath
		if page > 1 {
			url += "/page/" + strconv.Itoa(page)
		}

		pagePostings, err := a.fetchPage(ctx, url, seen)
		if err != nil {
			return nil, fmt.Errorf("rwfa fetch page %d: %w", page, err)
		}
		if len(pagePostings) == 0 {
			break
		}
		postings = append(postings, pagePostings...)
	}
	return postings, nil
}

func (a *RWFAAdapter) fetchPage(ctx context.Context, url string, seen map[string]bool) ([]model.RawPosting, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, err
	}

	var postings []model.RawPosting
	doc.Find(`a[href*="/jobs/"]`).Each(func(_ int, card *goquery.Selection) {
		href, ok := card.Attr("href")
		if !ok || href == "" || seen[href] {
			return
		}
		if strings.Contains(href, "/companies/") {
			return
		}
		seen[href] = true

		if p, ok := a.parseCard(card, href); ok {
			postings = append(postings, p)
		}
	})
	return postings, nil
}

// parseCard extracts one posting from a job card anchor. Cards render title,
// company, relative age and location as concatenated text, so the company is
// recovered as whatever follows the title before the first age or salary
// token.
func (a *RWFAAdapter) parseCard(card *goquery.Selection, href string) (model.RawPosting, bool) {
	text := strings.Join(strings.Fields(card.Text()), " ")

	title := strings.TrimSpace(card.Find("h3, h4, strong").First().Text())
	if title == "" {
		words := strings.Fields(text)
		if len(words) > 10 {
			words = words[:10]
		}
		title = strings.Join(words, " ")
	}
	if len(title) < 5 || isInternship(title) {
		return model.RawPosting{}, false
	}

	url := href
	if strings.HasPrefix(href, "/") {
		url = a.baseURL + href
	}
	slug := href
	if i := strings.LastIndex(href, "/"); i >= 0 {
		slug = href[i+1:]
	}

	return model.RawPosting{
		SourceSite:  "rwfa",
		SourceID:    "rwfa-" + slug,
		Title:       title,
		Company:     rwfaCompany(text, title),
		Description: text,
		URL:         url,
		PostedAt:    a.postedAt(text),
	}, true
}

// postedAt resolves relative ages like "2 days ago" or "about 17 hours ago"
// against the current time. Months are approximated as 30 days.
func (a *RWFAAdapter) postedAt(text string) string {
	lower := strings.ToLower(text)
	now := a.now().UTC()

	if m := rwfaHoursAgoRe.FindStringSubmatch(lower); m != nil {
		n, _ := strconv.Atoi(m[1])
		return now.Add(-time.Duration(n) * time.Hour).Format(time.RFC3339)
	}
	if m := rwfaDaysAgoRe.FindStringSubmatch(lower); m != nil {
		n, _ := strconv.Atoi(m[1])
		return now.AddDate(0, 0, -n).Format(time.RFC3339)
	}
	if m := rwfaWeeksAgoRe.FindStringSubmatch(lower); m != nil {
		n, _ := strconv.Atoi(m[1])
		return now.AddDate(0, 0, -7*n).Format(time.RFC3339)
	}
	if m := rwfaMonthsAgoRe.FindStringSubmatch(lower); m != nil {
		n, _ := strconv.Atoi(m[1])
		return now.AddDate(0, 0, -30*n).Format(time.RFC3339)
	}
	return now.Format(time.RFC3339)
}

// rwfaCompany takes the words following the title, stopping at the first
// token that starts the age, salary or location segment.
func rwfaCompany(text, title string) string {
	remaining := strings.TrimSpace(strings.Replace(text, title, "", 1))
	words := strings.Fields(remaining)
	if len(words) > 5 {
		words = words[:5]
	}

	var company []string
	for _, word := range words {
		lower := strings.ToLower(word)
		if lower == "about" || isDigits(lower) {
			break
		}
		if strings.Contains(lower, "ago") || strings.Contains(lower, "hour") ||
			strings.Contains(lower, "day") || strings.Contains(lower, "week") ||
			strings.Contains(lower, "worldwide") || strings.Contains(lower, "$") {
			break
		}
		company = append(company, word)
	}
	if len(company) == 0 {
		return ""
	}
	return strings.Join(company, " ")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
