package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ihaichao/remote-job-aggregator/internal/model"
)

const (
	v2exBaseURL  = "https://www.v2ex.com/api/v2"
	v2exMaxPages = 10
)

// Both the dedicated remote node and the general jobs node carry remote
// postings; the jobs node is filtered down by remote keywords below.
var v2exNodes = []string{"remote", "jobs"}

var remoteKeywords = []string{
	"远程", "remote", "在家", "wfh", "work from home", "居家",
}

type v2exTopic struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	URL     string `json:"url"`
	Created int64  `json:"created"`
}

// v2exResponse is the API v2 envelope; success turns false once the page
// number exceeds the node's last page.
type v2exResponse struct {
	Success bool        `json:"success"`
	Result  []v2exTopic `json:"result"`
}

// V2EXAdapter fetches remote job topics from the V2EX API v2.
// The API requires a personal access token.
type V2EXAdapter struct {
	token   string
	client  *http.Client
	baseURL string
}

// NewV2EXAdapter creates an adapter for the V2EX remote and jobs nodes.
func NewV2EXAdapter(token string, client *http.Client) *V2EXAdapter {
	return &V2EXAdapter{
		token:   token,
		client:  client,
		baseURL: v2exBaseURL,
	}
}

// FetchPostings retrieves topics from every configured node, paginating up
// to v2exMaxPages per node, and deduplicates by topic ID across nodes.
func (a *V2EXAdapter) FetchPostings(ctx context.Context) ([]model.RawPosting, error) {
	if a.token == "" {
		return nil, errors.New("v2ex fetch: API token is required")
	}

	seen := make(map[int64]bool)
	var postings []model.RawPosting
	for _, node := range v2exNodes {
		nodePostings, err := a.fetchNode(ctx, node, seen)
		if err != nil {
			return nil, fmt.Errorf("v2ex fetch for node %s: %w", node, err)
		}
		postings = append(postings, nodePostings...)
	}
	return postings, nil
}

func (a *V2EXAdapter) fetchNode(ctx context.Context, node string, seen map[int64]bool) ([]model.RawPosting, error) {
	var postings []model.RawPosting
	for page := 1; page <= v2exMaxPages; page++ {
		url := fmt.Sprintf("%s/nodes/%s/topics?p=%d", a.baseURL, node, page)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+a.token)

		resp, err := a.client.Do(req)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusOK {
			retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
			resp.Body.Close()
			return nil, &model.HTTPError{
				StatusCode: resp.StatusCode,
				RetryAfter: retryAfter,
				Err:        fmt.Errorf("unexpected status %d on page %d", resp.StatusCode, page),
			}
		}

		var apiResp v2exResponse
		err = json.NewDecoder(resp.Body).Decode(&apiResp)
		resp.Body.Close()
		if err != nil {
			return nil, err
		}

		// success turns false past the last page.
		if !apiResp.Success || len(apiResp.Result) == 0 {
			break
		}

		for _, topic := range apiResp.Result {
			if seen[topic.ID] {
				continue
			}
			seen[topic.ID] = true

			if isInternship(topic.Title) {
				continue
			}
			if !mentionsRemote(topic.Title + " " + topic.Content) {
				continue
			}

			url := topic.URL
			if url == "" {
				url = fmt.Sprintf("https://www.v2ex.com/t/%d", topic.ID)
			}
			var postedAt string
			if topic.Created > 0 {
				postedAt = time.Unix(topic.Created, 0).UTC().Format(time.RFC3339)
			}

			postings = append(postings, model.RawPosting{
				SourceSite:  "v2ex",
				SourceID:    strconv.FormatInt(topic.ID, 10),
				Title:       topic.Title,
				Description: topic.Content,
				URL:         url,
				PostedAt:    postedAt,
			})
		}
	}
	return postings, nil
}

func mentionsRemote(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range remoteKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
