package httpclient

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gh-trophy/internal/logging"

	"github.com/Azure/go-ntlmssp"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// DefaultTimeout is the default HTTP client timeout for upstream requests.
const DefaultTimeout = 30 * time.Second

// Config describes how the upstream HTTP client is built. It comes from the
// environment: credentials never travel through the CLI flag surface.
type Config struct {
	AuthType      string // none, token, basic, ntlm, oauth2
	Token         string
	Username      string
	Password      string
	ClientID      string
	ClientSecret  string
	TokenURL      string
	Scope         string
	Timeout       time.Duration
	TLSSkipVerify bool
}

// ConfigFromEnv reads the client configuration from environment variables.
// The token is looked up under GITHUB_TOKEN1, GITHUB_TOKEN2, and GITHUB_TOKEN,
// first non-empty wins. When TROPHY_AUTH is unset, the auth type defaults to
// "token" if a token was found and "none" otherwise.
func ConfigFromEnv(getenv func(string) string) Config {
	cfg := Config{
		Username:     getenv("TROPHY_AUTH_USERNAME"),
		Password:     getenv("TROPHY_AUTH_PASSWORD"),
		ClientID:     getenv("TROPHY_OAUTH_CLIENT_ID"),
		ClientSecret: getenv("TROPHY_OAUTH_CLIENT_SECRET"),
		TokenURL:     getenv("TROPHY_OAUTH_TOKEN_URL"),
		Scope:        getenv("TROPHY_OAUTH_SCOPE"),
		Timeout:      DefaultTimeout,
	}

	for _, name := range []string{"GITHUB_TOKEN1", "GITHUB_TOKEN2", "GITHUB_TOKEN"} {
		if v := getenv(name); v != "" {
			cfg.Token = v
			break
		}
	}

	cfg.AuthType = strings.ToLower(getenv("TROPHY_AUTH"))
	if cfg.AuthType == "" {
		if cfg.Token != "" {
			cfg.AuthType = "token"
		} else {
			cfg.AuthType = "none"
		}
	}

	if raw := getenv("TROPHY_TIMEOUT"); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			cfg.Timeout = time.Duration(secs) * time.Second
		} else {
			logging.Logf(logging.Warning, "Ignoring invalid TROPHY_TIMEOUT value '%s'", raw)
		}
	}

	switch strings.ToLower(getenv("TROPHY_TLS_SKIP_VERIFY")) {
	case "1", "true", "yes":
		cfg.TLSSkipVerify = true
	}

	return cfg
}

// NewClient creates an *http.Client for upstream stats requests. Token auth
// wraps the base transport with an oauth2 static token source, "oauth2" runs
// the client credentials flow, and "ntlm" wraps the transport in the NTLM
// negotiator. Basic credentials are applied per request via ApplyRequestAuth.
func NewClient(cfg Config) (*http.Client, error) {
	baseTransport := &http.Transport{
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.TLSSkipVerify,
		},
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	if cfg.TLSSkipVerify {
		logging.Logf(logging.Info, "TLS certificate verification is DISABLED for upstream requests")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	switch strings.ToLower(cfg.AuthType) {
	case "token":
		if cfg.Token == "" {
			return nil, fmt.Errorf("token authentication requires a GitHub token in the environment")
		}
		logging.Logf(logging.Debug, "Configuring static token transport for upstream requests")
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{
			Transport: baseTransport,
			Timeout:   timeout,
		})
		client := oauth2.NewClient(ctx, src)
		client.Timeout = timeout
		return client, nil

	case "oauth2":
		if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.TokenURL == "" {
			return nil, fmt.Errorf("oauth2 requires TROPHY_OAUTH_CLIENT_ID, TROPHY_OAUTH_CLIENT_SECRET, and TROPHY_OAUTH_TOKEN_URL")
		}
		logging.Logf(logging.Debug, "Configuring OAuth2 client credentials flow for upstream requests")
		oauthConfig := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
		}
		if cfg.Scope != "" {
			oauthConfig.Scopes = strings.Split(cfg.Scope, " ")
		}
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{
			Transport: baseTransport,
			Timeout:   timeout,
		})
		client := oauthConfig.Client(ctx)
		client.Timeout = timeout
		return client, nil

	case "ntlm":
		if cfg.Username == "" || cfg.Password == "" {
			return nil, fmt.Errorf("ntlm authentication requires TROPHY_AUTH_USERNAME and TROPHY_AUTH_PASSWORD")
		}
		logging.Logf(logging.Debug, "Configuring NTLM negotiator transport for upstream requests")
		return &http.Client{
			Timeout:   timeout,
			Transport: ntlmssp.Negotiator{RoundTripper: baseTransport},
		}, nil

	case "basic":
		if cfg.Username == "" || cfg.Password == "" {
			return nil, fmt.Errorf("basic authentication requires TROPHY_AUTH_USERNAME and TROPHY_AUTH_PASSWORD")
		}
		fallthrough
	case "none", "":
		return &http.Client{
			Timeout:   timeout,
			Transport: baseTransport,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported authentication type '%s' for client creation", cfg.AuthType)
	}
}

// ApplyRequestAuth sets request-time credentials for auth types that carry
// them on the request itself: basic sends them outright, ntlm seeds the
// challenge negotiation with an initial basic header. Transport-level types
// need nothing here.
func ApplyRequestAuth(req *http.Request, cfg Config) error {
	switch strings.ToLower(cfg.AuthType) {
	case "basic", "ntlm":
		if cfg.Username == "" || cfg.Password == "" {
			return fmt.Errorf("%s authentication requires TROPHY_AUTH_USERNAME and TROPHY_AUTH_PASSWORD", strings.ToLower(cfg.AuthType))
		}
		req.SetBasicAuth(cfg.Username, cfg.Password)
	case "token", "oauth2", "none", "":
		// Handled by the client transport.
	default:
		return fmt.Errorf("unsupported authentication type configured: %s", cfg.AuthType)
	}
	return nil
}
