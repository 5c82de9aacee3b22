package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ihaichao/remote-job-aggregator/internal/model"
)

const remoteokBaseURL = "https://remoteok.com/api"

// remoteokItem is one feed entry. The feed's first element is a legal
// notice, not a job; it decodes to an item with an empty position and is
// skipped like any other positionless entry.
type remoteokItem struct {
	ID        string   `json:"id"`
	Position  string   `json:"position"`
	Company   string   `json:"company"`
	Tags      []string `json:"tags"`
	Location  string   `json:"location"`
	URL       string   `json:"url"`
	Date      string   `json:"date"`
	SalaryMin int      `json:"salary_min"`
	SalaryMax int      `json:"salary_max"`

	Description string `json:"description"`
}

// RemoteOKAdapter fetches the RemoteOK public JSON feed. Every posting on
// the board is remote by definition.
type RemoteOKAdapter struct {
	client  *http.Client
	baseURL string
}

// NewRemoteOKAdapter creates an adapter for the RemoteOK feed.
func NewRemoteOKAdapter(client *http.Client) *RemoteOKAdapter {
	return &RemoteOKAdapter{
		client:  client,
		baseURL: remoteokBaseURL,
	}
}

// FetchPostings retrieves the full feed in one request.
func (a *RemoteOKAdapter) FetchPostings(ctx context.Context) ([]model.RawPosting, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("remoteok fetch: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remoteok fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("remoteok fetch: unexpected status %d", resp.StatusCode),
		}
	}

	// Feed entries occasionally carry fields with shifting types, so each
	// element is decoded on its own and bad ones are dropped.
	var raw []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("remoteok fetch: %w", err)
	}

	var postings []model.RawPosting
	for _, entry := range raw {
		var item remoteokItem
		if err := json.Unmarshal(entry, &item); err != nil {
			continue
		}
		if item.Position == "" || isInternship(item.Position) {
			continue
		}

		url := item.URL
		if url == "" {
			url = "https://remoteok.com/remote-jobs/" + item.ID
		}

		postings = append(postings, model.RawPosting{
			SourceSite:  "remoteok",
			SourceID:    item.ID,
			Title:       item.Position,
			Description: extractText(item.Description),
			URL:         url,
			Company:     item.Company,
			PostedAt:    item.Date,
			Tags:        item.Tags,
			Location:    item.Location,
			SalaryMin:   item.SalaryMin,
			SalaryMax:   item.SalaryMax,
		})
	}
	return postings, nil
}
