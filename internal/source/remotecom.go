package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ihaichao/remote-job-aggregator/internal/model"
)

const (
	remotecomBaseURL  = "https://remote.com"
	remotecomJobsPath = "/jobs/all"
	remotecomMaxPages = 13
)

// The listing page embeds its data as Next.js flight chunks:
// self.__next_f.push([1,"..."]). The jobs array lives inside one of the
// decoded string payloads.
var remotecomChunkRe = regexp.MustCompile(`self\.__next_f\.push\(\[1,"((?:\\.|[^"\\])*)"\]\)`)

// Job ID suffix on slugs, e.g. "backend-engineer-j1abc2d".
var remotecomSlugIDRe = regexp.MustCompile(`-j[a-z0-9]+$`)

type remotecomJob struct {
	Status         string `json:"status"`
	Title          string `json:"title"`
	Slug           string `json:"slug"`
	InsertedAt     string `json:"insertedAt"`
	PublishedAt    string `json:"publishedAt"`
	ApplyURL       string `json:"applyUrl"`
	CompanyProfile struct {
		Name string `json:"name"`
		Slug string `json:"slug"`
	} `json:"companyProfile"`
}

type remotecomPayload struct {
	Jobs []remotecomJob `json:"jobs"`
}

// RemoteComAdapter fetches remote engineering listings from remote.com by
// decoding the JSON payload embedded in the listing pages.
type RemoteComAdapter struct {
	client  *http.Client
	baseURL string
}

// NewRemoteComAdapter creates an adapter for remote.com listings.
func NewRemoteComAdapter(client *http.Client) *RemoteComAdapter {
	return &RemoteComAdapter{
		client:  client,
		baseURL: remotecomBaseURL,
	}
}

// FetchPostings walks the engineer listing pages until one yields no jobs,
// up to remotecomMaxPages, deduplicating by slug across pages.
func (a *RemoteComAdapter) FetchPostings(ctx context.Context) ([]model.RawPosting, error) {
	var postings []model.RawPosting
	seen := make(map[string]bool)

	for page := 1; page <= remotecomMaxPages; page++ {
		jobs, err := a.fetchPage(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("remotecom fetch page %d: %w", page, err)
		}

		if len(jobs) == 0 {
			break
		}
		for _, job := range jobs {
			if p, ok := a.mapJob(job, seen); ok {
				postings = append(postings, p)
			}
		}
	}
	return postings, nil
}

func (a *RemoteComAdapter) fetchPage(ctx context.Context, page int) ([]remotecomJob, error) {
	params := url.Values{
		"query":             {"engineer"},
		"workplaceLocation": {"remote"},
		"country":           {"anywhere"},
		"page":              {strconv.Itoa(page)},
	}
	pageURL := a.baseURL + remotecomJobsPath + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")

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

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return parseRemotecomJobs(string(body)), nil
}

func (a *RemoteComAdapter) mapJob(job remotecomJob, seen map[string]bool) (model.RawPosting, bool) {
	if job.Status != "published" || job.Slug == "" || job.Title == "" {
		return model.RawPosting{}, false
	}
	if seen[job.Slug] {
		return model.RawPosting{}, false
	}
	seen[job.Slug] = true

	if isInternship(job.Title) {
		return model.RawPosting{}, false
	}

	company := job.CompanyProfile.Name
	if company == "" {
		company = remotecomCompanyFromSlug(job.Slug)
	}

	originalURL := a.baseURL + "/jobs/all?jobId=" + job.Slug
	if job.CompanyProfile.Slug != "" {
		originalURL = a.baseURL + "/jobs/" + job.CompanyProfile.Slug + "/" + job.Slug
	}

	postedAt := job.PublishedAt
	if postedAt == "" {
		postedAt = job.InsertedAt
	}

	return model.RawPosting{
		SourceSite: "remotecom",
		SourceID:   "remotecom-" + job.Slug,
		Title:      job.Title,
		URL:        originalURL,
		ApplyURL:   job.ApplyURL,
		Company:    company,
		PostedAt:   postedAt,
	}, true
}

// parseRemotecomJobs decodes the flight chunks of a listing page and returns
// the first jobs array found, scanning the raw HTML as a fallback.
func parseRemotecomJobs(html string) []remotecomJob {
	for _, m := range remotecomChunkRe.FindAllStringSubmatch(html, -1) {
		var decoded string
		if err := json.Unmarshal([]byte(`"`+m[1]+`"`), &decoded); err != nil {
			continue
		}
		if jobs := remotecomJobsFromText(decoded); len(jobs) > 0 {
			return jobs
		}
	}
	return remotecomJobsFromText(html)
}

// remotecomJobsFromText locates the smallest JSON object containing a
// "jobs" array and unmarshals it.
func remotecomJobsFromText(text string) []remotecomJob {
	idx := strings.Index(text, `"jobs":[`)
	if idx == -1 {
		return nil
	}
	start := strings.LastIndex(text[:idx], "{")
	if start == -1 {
		return nil
	}

	depth := 0
	end := -1
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				end = i + 1
			}
		}
		if end != -1 {
			break
		}
	}
	if end == -1 {
		return nil
	}

	var payload remotecomPayload
	if err := json.Unmarshal([]byte(text[start:end]), &payload); err != nil {
		return nil
	}
	return payload.Jobs
}

// remotecomCompanyFromSlug recovers a readable company name from a job slug
// when the payload carries no company profile.
func remotecomCompanyFromSlug(slug string) string {
	name := remotecomSlugIDRe.ReplaceAllString(slug, "")
	name = strings.ReplaceAll(name, "-", " ")
	if name == "" {
		return model.CompanyUnknown
	}
	// cases.Caser carries internal state, so build one per call.
	return cases.Title(language.English).String(name)
}
