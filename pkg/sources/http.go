package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
)

// HTTPSource fetches a JSON document over HTTP GET.
type HTTPSource struct {
	url     string
	headers map[string]string
	client  *http.Client
}

// NewHTTPSource builds an http connector. Required parameter: url.
// Optional: headers (mapping), timeout_s (number).
func NewHTTPSource(_ string, with map[string]any) (Connector, error) {
	rawURL, ok := stringParam(with, "url")
	if !ok || rawURL == "" {
		return nil, fmt.Errorf("http source requires a url parameter")
	}
	if _, err := url.Parse(rawURL); err != nil {
		return nil, fmt.Errorf("http source url is invalid: %w", err)
	}

	headers := map[string]string{}
	if raw, ok := with["headers"].(map[string]any); ok {
		for key, value := range raw {
			text, isString := value.(string)
			if !isString {
				return nil, fmt.Errorf("http source header %q must be a string", key)
			}
			headers[key] = text
		}
	}

	client := &http.Client{}
	if timeout, ok := floatParam(with, "timeout_s"); ok {
		client.Timeout = time.Duration(timeout * float64(time.Second))
	}
	return &HTTPSource{url: rawURL, headers: headers, client: client}, nil
}

// Fetch implements Connector.
func (s *HTTPSource) Fetch(ctx context.Context) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, err
	}
	for key, value := range s.headers {
		req.Header.Set(key, value)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("GET %s returned %s", s.url, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var value any
	if err := json.Unmarshal(body, &value); err != nil {
		return nil, fmt.Errorf("response from %s is not valid JSON: %w", s.url, err)
	}
	return value, nil
}

// Describe implements Describer.
func (s *HTTPSource) Describe() string {
	parsed, err := url.Parse(s.url)
	if err != nil {
		return s.url
	}
	return parsed.Host + parsed.Path
}
