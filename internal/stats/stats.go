package stats

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"gh-trophy/internal/httpclient"
	"gh-trophy/internal/logging"
	"gh-trophy/internal/util"

	"github.com/tidwall/gjson"
)

// DefaultEndpoint is the GitHub GraphQL API endpoint. GITHUB_API_URL
// overrides it for GitHub Enterprise installs.
const DefaultEndpoint = "https://api.github.com/graphql"

// ErrUserNotFound is returned when the login does not resolve to a user.
var ErrUserNotFound = errors.New("user not found")

// Stats holds the profile counters trophies are scored from.
type Stats struct {
	Username      string
	Commits       int
	Followers     int
	Issues        int
	PullRequests  int
	Reviews       int
	Repositories  int
	Stargazers    int
	Organizations int
	Languages     int
	CreatedAt     time.Time
}

// statsQuery collects everything the trophy evaluator needs in one round trip.
// Stargazers and languages come from the first page of repositories, ordered
// by star count so the page carries almost all of them.
const statsQuery = `query UserStats($login: String!) {
  user(login: $login) {
    createdAt
    contributionsCollection {
      totalCommitContributions
      restrictedContributionsCount
      totalPullRequestReviewContributions
    }
    followers { totalCount }
    issues { totalCount }
    pullRequests { totalCount }
    organizations { totalCount }
    repositories(first: 100, ownerAffiliations: OWNER, orderBy: {field: STARGAZERS, direction: DESC}) {
      totalCount
      nodes {
        stargazers { totalCount }
        languages(first: 10) { nodes { name } }
      }
    }
  }
}`

// Client fetches GitHub user statistics over the GraphQL API.
type Client struct {
	httpClient *http.Client
	cfg        httpclient.Config
	endpoint   string
}

// NewClient wires a stats client from an already-built HTTP client.
func NewClient(hc *http.Client, cfg httpclient.Config, endpoint string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{httpClient: hc, cfg: cfg, endpoint: endpoint}
}

// NewClientFromEnv builds a stats client configured entirely from environment
// variables: GITHUB_TOKEN* for credentials, GITHUB_API_URL for the endpoint,
// TROPHY_* for transport tuning.
func NewClientFromEnv(getenv func(string) string) (*Client, error) {
	cfg := httpclient.ConfigFromEnv(getenv)
	hc, err := httpclient.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}
	return NewClient(hc, cfg, getenv("GITHUB_API_URL")), nil
}

// Fetch retrieves the profile statistics for a login.
func (c *Client) Fetch(ctx context.Context, login string) (*Stats, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"query":     statsQuery,
		"variables": map[string]string{"login": login},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode stats query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create stats request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if err := httpclient.ApplyRequestAuth(req, c.cfg); err != nil {
		return nil, fmt.Errorf("failed to apply auth headers: %w", err)
	}

	logging.Logf(logging.Debug, "Fetching profile stats for '%s' from %s", login, c.endpoint)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stats request failed: %w", err)
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read stats response: %w", err)
	}
	logging.Logf(logging.Debug, "Stats response status: %d, body snippet: %s", resp.StatusCode, util.Snippet(bodyBytes))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("stats endpoint returned status %d: %s", resp.StatusCode, util.Snippet(bodyBytes))
	}
	// Proxies and SSO walls answer with HTML at status 200.
	if !util.LooksLikeJSON(string(bodyBytes)) {
		return nil, fmt.Errorf("stats endpoint returned a non-JSON response: %s", util.Snippet(bodyBytes))
	}
	return parseStats(login, bodyBytes)
}

// parseStats extracts the counters from a GraphQL response body. GitHub
// reports a missing user both through the errors array (type NOT_FOUND) and
// through a null data.user; both map to ErrUserNotFound.
func parseStats(login string, body []byte) (*Stats, error) {
	if errs := gjson.GetBytes(body, "errors"); errs.IsArray() && len(errs.Array()) > 0 {
		if gjson.GetBytes(body, "errors.0.type").String() == "NOT_FOUND" {
			return nil, fmt.Errorf("%w: %s", ErrUserNotFound, login)
		}
		msg := gjson.GetBytes(body, "errors.0.message").String()
		if msg == "" {
			msg = "unknown GraphQL error"
		}
		return nil, fmt.Errorf("graphql error: %s", msg)
	}

	user := gjson.GetBytes(body, "data.user")
	if !user.Exists() || user.Type == gjson.Null {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, login)
	}

	s := &Stats{
		Username: login,
		Commits: int(user.Get("contributionsCollection.totalCommitContributions").Int() +
			user.Get("contributionsCollection.restrictedContributionsCount").Int()),
		Reviews:       int(user.Get("contributionsCollection.totalPullRequestReviewContributions").Int()),
		Followers:     int(user.Get("followers.totalCount").Int()),
		Issues:        int(user.Get("issues.totalCount").Int()),
		PullRequests:  int(user.Get("pullRequests.totalCount").Int()),
		Repositories:  int(user.Get("repositories.totalCount").Int()),
		Organizations: int(user.Get("organizations.totalCount").Int()),
	}

	languages := make(map[string]bool)
	user.Get("repositories.nodes").ForEach(func(_, repo gjson.Result) bool {
		s.Stargazers += int(repo.Get("stargazers.totalCount").Int())
		repo.Get("languages.nodes").ForEach(func(_, lang gjson.Result) bool {
			if name := lang.Get("name").String(); name != "" {
				languages[name] = true
			}
			return true
		})
		return true
	})
	s.Languages = len(languages)

	if created := user.Get("createdAt").String(); created != "" {
		if ts, err := time.Parse(time.RFC3339, created); err == nil {
			s.CreatedAt = ts
		} else {
			logging.Logf(logging.Debug, "Ignoring unparseable createdAt '%s' for '%s'", created, login)
		}
	}

	return s, nil
}
