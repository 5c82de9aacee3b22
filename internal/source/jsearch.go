package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ihaichao/remote-job-aggregator/internal/model"
)

const (
	jsearchBaseURL = "https://jsearch.p.rapidapi.com/search"
	jsearchAPIHost = "jsearch.p.rapidapi.com"

	// Three pages per query, thirty results a page.
	jsearchNumPages = "3"
)

// jsearchQueries target the remote developer roles the aggregator cares
// about; the API aggregates LinkedIn, Indeed, Glassdoor and others.
var jsearchQueries = []string{
	"remote software developer",
	"remote frontend developer",
	"remote backend developer",
	"remote full stack developer",
}

// Country codes mapped to the closed region set. Anything else keeps its
// raw code and is treated as restricted.
var jsearchUSCodes = map[string]bool{"US": true, "USA": true, "UNITED STATES": true}
var jsearchEUCodes = map[string]bool{
	"GB": true, "UK": true, "DE": true, "FR": true, "NL": true, "ES": true,
	"IT": true, "SE": true, "PL": true, "AT": true, "BE": true, "CH": true,
	"IE": true, "DK": true, "NO": true, "FI": true, "PT": true,
}
var jsearchCNCodes = map[string]bool{"CN": true, "CHINA": true}

type jsearchResponse struct {
	Data []jsearchItem `json:"data"`
}

type jsearchItem struct {
	JobID          string `json:"job_id"`
	Title          string `json:"job_title"`
	Employer       string `json:"employer_name"`
	ApplyLink      string `json:"job_apply_link"`
	Description    string `json:"job_description"`
	PostedAt       string `json:"job_posted_at_datetime_utc"`
	Country        string `json:"job_country"`
	IsRemote       bool   `json:"job_is_remote"`
	EmploymentType string `json:"job_employment_type"`
}

// JSearchAdapter fetches remote developer jobs from the JSearch API on
// RapidAPI. Requires an API key.
type JSearchAdapter struct {
	apiKey  string
	client  *http.Client
	baseURL string
}

// NewJSearchAdapter creates an adapter for the JSearch API.
func NewJSearchAdapter(apiKey string, client *http.Client) *JSearchAdapter {
	return &JSearchAdapter{
		apiKey:  apiKey,
		client:  client,
		baseURL: jsearchBaseURL,
	}
}

// FetchPostings runs every search query and merges the results,
// deduplicating by job ID across queries. Only postings open to developers
// in CN or worldwide are kept.
func (a *JSearchAdapter) FetchPostings(ctx context.Context) ([]model.RawPosting, error) {
	if a.apiKey == "" {
		return nil, errors.New("jsearch fetch: API key is required")
	}

	var postings []model.RawPosting
	seen := make(map[string]bool)

	for _, query := range jsearchQueries {
		items, err := a.search(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("jsearch fetch %q: %w", query, err)
		}

		for _, item := range items {
			if item.JobID == "" || item.Title == "" || seen[item.JobID] {
				continue
			}
			if isInternship(item.Title) {
				continue
			}
			region := jsearchRegion(item)
			if region != model.RegionCN && region != model.RegionWorldwide {
				continue
			}
			seen[item.JobID] = true

			postings = append(postings, model.RawPosting{
				SourceSite:  "jsearch",
				SourceID:    item.JobID,
				Title:       item.Title,
				Description: item.Description,
				URL:         item.ApplyLink,
				ApplyURL:    item.ApplyLink,
				Company:     item.Employer,
				PostedAt:    item.PostedAt,
				Tags:        []string{strings.ToLower(item.EmploymentType)},
				Location:    item.Country,
				Region:      region,
			})
		}
	}
	return postings, nil
}

func (a *JSearchAdapter) search(ctx context.Context, query string) ([]jsearchItem, error) {
	params := url.Values{
		"query":            {query},
		"page":             {"1"},
		"num_pages":        {jsearchNumPages},
		"remote_jobs_only": {"true"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-RapidAPI-Key", a.apiKey)
	req.Header.Set("X-RapidAPI-Host", jsearchAPIHost)

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

	var body jsearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	return body.Data, nil
}

// jsearchRegion maps the feed's country code and remote flag to the closed
// region set. A remote posting without a country restriction is worldwide.
func jsearchRegion(item jsearchItem) string {
	country := strings.ToUpper(strings.TrimSpace(item.Country))
	if item.IsRemote && country == "" {
		return model.RegionWorldwide
	}
	switch {
	case jsearchUSCodes[country]:
		return model.RegionUS
	case jsearchEUCodes[country]:
		return model.RegionEU
	case jsearchCNCodes[country]:
		return model.RegionCN
	}
	if item.IsRemote {
		return model.RegionWorldwide
	}
	if country == "" {
		return model.RegionWorldwide
	}
	return country
}
