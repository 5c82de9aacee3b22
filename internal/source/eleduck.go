package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ihaichao/remote-job-aggregator/internal/model"
)

const (
	eleduckBaseURL = "https://svc.eleduck.com/api/v1"
	eleduckSiteURL = "https://eleduck.com"

	// Category 5 is the job-postings section of the forum.
	eleduckCategory = 5

	// Postings older than this are ignored; they only reappear on recent
	// pages because someone commented.
	eleduckWindow = 30 * 24 * time.Hour
)

type eleduckTag struct {
	Name string `json:"name"`
}

type eleduckPost struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	FullTitle   string       `json:"full_title"`
	Summary     string       `json:"summary"`
	PublishedAt string       `json:"published_at"`
	TouchedAt   string       `json:"touched_at"`
	Tags        []eleduckTag `json:"tags"`
}

type eleduckPager struct {
	TotalPages int `json:"total_pages"`
}

type eleduckResponse struct {
	Posts []eleduckPost `json:"posts"`
	Pager eleduckPager  `json:"pager"`
}

// EleduckAdapter fetches job postings from the eleduck.com JSON API.
type EleduckAdapter struct {
	client  *http.Client
	baseURL string
	now     func() time.Time
}

// NewEleduckAdapter creates an adapter for the eleduck job-postings section.
func NewEleduckAdapter(client *http.Client) *EleduckAdapter {
	return &EleduckAdapter{
		client:  client,
		baseURL: eleduckBaseURL,
		now:     time.Now,
	}
}

// FetchPostings pages through the job section until it reaches posts whose
// last activity predates the 30-day window. The feed is ordered by activity,
// so everything past that point is older still.
func (a *EleduckAdapter) FetchPostings(ctx context.Context) ([]model.RawPosting, error) {
	cutoff := a.now().UTC().Add(-eleduckWindow)

	var postings []model.RawPosting
	for page := 1; ; page++ {
		resp, err := a.fetchPage(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("eleduck fetch page %d: %w", page, err)
		}
		if len(resp.Posts) == 0 {
			break
		}

		stop := false
		for _, post := range resp.Posts {
			if touched, ok := parseEleduckTime(post.TouchedAt); ok && touched.Before(cutoff) {
				stop = true
				break
			}

			published, ok := parseEleduckTime(post.PublishedAt)
			if ok && published.Before(cutoff) {
				continue
			}

			title := post.Title
			if title == "" {
				title = post.FullTitle
			}
			if title == "" || isInternship(title) {
				continue
			}

			tags := make([]string, 0, len(post.Tags))
			for _, t := range post.Tags {
				tags = append(tags, t.Name)
			}
			var postedAt string
			if ok {
				postedAt = published.UTC().Format(time.RFC3339)
			}

			postings = append(postings, model.RawPosting{
				SourceSite:  "eleduck",
				SourceID:    "eleduck-" + post.ID,
				Title:       title,
				Description: post.Summary,
				URL:         fmt.Sprintf("%s/posts/%s", eleduckSiteURL, post.ID),
				PostedAt:    postedAt,
				Tags:        tags,
			})
		}

		if stop || page >= resp.Pager.TotalPages {
			break
		}
	}
	return postings, nil
}

func (a *EleduckAdapter) fetchPage(ctx context.Context, page int) (*eleduckResponse, error) {
	url := fmt.Sprintf("%s/posts?category=%d&page=%d", a.baseURL, eleduckCategory, page)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

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

	var apiResp eleduckResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, err
	}
	return &apiResp, nil
}

func parseEleduckTime(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
