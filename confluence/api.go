package confluence

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"
)

func NewAPI(baseURL string, username string, token string) (*API, error) {

	if baseURL == "" {
		return &API{}, fmt.Errorf("confluence: configure your wiki's base URL with --base-url")
	}
	if token == "" {
		return &API{}, fmt.Errorf("confluence: auth token is empty, please check auth-token-cmd")
	}

	// The base URL should be the server root, e.g. https://confluence.example.com.
	// API routes and the server-relative refs it hands back both resolve against it.
	u, err := url.ParseRequestURI(baseURL)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't parse REST API URL: %w", err)
	}

	a := &API{
		BaseURI:  u,
		token:    token,
		username: username,
	}
	a.Client = &http.Client{}

	return a, nil
}

type API struct {
	// The root of the Confluence instance, e.g. https://confluence.example.com
	BaseURI *url.URL

	// An HTTP client - you can substitute VCR or whatnot.
	Client *http.Client

	// Extra headers applied to every request.  Some instances hide behind an auth
	// proxy that wants its own header.
	Headers map[string]string

	// Auth info.  Empty username means we send the token as a bearer token instead
	// of basic auth.
	username, token string
}

// ClientOptions collects the transport-level knobs for NewHTTPClient.
type ClientOptions struct {
	// Don't verify the server's certificate chain.  Self-hosted instances love
	// self-signed certs.
	SkipTLSVerify bool

	// Proxy URL per scheme, e.g. {"https": "http://localhost:3128"}.  Schemes not
	// listed connect directly.  Empty map means honour the usual environment
	// variables.
	Proxies map[string]string
}

// NewHTTPClient builds an http.Client for API.Client according to opts.
func NewHTTPClient(opts ClientOptions) (*http.Client, error) {
	tr := http.DefaultTransport.(*http.Transport).Clone()

	if opts.SkipTLSVerify {
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	if len(opts.Proxies) > 0 {
		proxies := make(map[string]*url.URL, len(opts.Proxies))
		for scheme, raw := range opts.Proxies {
			u, err := url.Parse(raw)
			if err != nil {
				return nil, fmt.Errorf("confluence: couldn't parse proxy URL for scheme %s: %w", scheme, err)
			}
			proxies[scheme] = u
		}
		tr.Proxy = func(req *http.Request) (*url.URL, error) {
			return proxies[req.URL.Scheme], nil
		}
	}

	return &http.Client{Transport: tr}, nil
}
