package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ZaguanLabs/gotmemo"
)

// DefaultGoogleBaseURL is the Cloud Translation v2 endpoint.
const DefaultGoogleBaseURL = "https://translation.googleapis.com/language/translate/v2"

// maxErrorBody bounds how much of a failed response is quoted in errors.
const maxErrorBody = 512

// GoogleProvider translates through the Google Cloud Translation v2 REST API.
// The API key comes from each request.
type GoogleProvider struct {
	baseURL    string
	httpClient *http.Client
}

// GoogleConfig holds configuration for the Google provider.
type GoogleConfig struct {
	BaseURL    string        // Endpoint (default: DefaultGoogleBaseURL)
	Timeout    time.Duration // Per-request HTTP timeout (default: 30s)
	HTTPClient *http.Client  // Overrides Timeout when set
}

// NewGoogleProvider creates a new Google provider.
func NewGoogleProvider(cfg GoogleConfig) *GoogleProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultGoogleBaseURL
	}

	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	return &GoogleProvider{
		baseURL:    baseURL,
		httpClient: client,
	}
}

type googleRequest struct {
	Q      []string `json:"q"`
	Source string   `json:"source,omitempty"`
	Target string   `json:"target"`
	Format string   `json:"format"`
}

type googleResponse struct {
	Data struct {
		Translations []struct {
			TranslatedText string `json:"translatedText"`
		} `json:"translations"`
	} `json:"data"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Translate sends all texts in a single request.
func (p *GoogleProvider) Translate(ctx context.Context, req TranslateRequest) ([]string, error) {
	if len(req.Texts) == 0 {
		return []string{}, nil
	}
	if req.APIKey == "" {
		return nil, &gotmemo.ProviderError{Message: "Google API call failed", Cause: gotmemo.ErrMissingAPIKey}
	}

	payload, err := json.Marshal(googleRequest{
		Q:      req.Texts,
		Source: gotmemo.ToHTMLLang(req.SourceLang),
		Target: gotmemo.ToHTMLLang(req.TargetLang),
		Format: "text",
	})
	if err != nil {
		return nil, &gotmemo.ProviderError{Message: "encoding request", Cause: err}
	}

	endpoint := p.baseURL + "?key=" + url.QueryEscape(req.APIKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &gotmemo.ProviderError{Message: "creating request", Cause: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", gotmemo.UserAgent())

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, &gotmemo.ProviderError{Message: "Google API call failed", Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &gotmemo.ProviderError{Message: "reading response", Cause: err, StatusCode: resp.StatusCode}
	}

	var parsed googleResponse
	decodeErr := json.Unmarshal(body, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := "Google API returned an error"
		if decodeErr == nil && parsed.Error != nil && parsed.Error.Message != "" {
			msg = parsed.Error.Message
		} else if len(body) > 0 {
			msg = truncate(string(body), maxErrorBody)
		}
		return nil, &gotmemo.ProviderError{Message: msg, StatusCode: resp.StatusCode}
	}
	if decodeErr != nil {
		return nil, &gotmemo.ProviderError{Message: "invalid response format from Google", Cause: decodeErr, StatusCode: resp.StatusCode}
	}

	if len(parsed.Data.Translations) != len(req.Texts) {
		return nil, &gotmemo.CountMismatchError{Expected: len(req.Texts), Got: len(parsed.Data.Translations)}
	}

	results := make([]string, len(parsed.Data.Translations))
	for i, t := range parsed.Data.Translations {
		results[i] = t.TranslatedText
	}
	return results, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return fmt.Sprintf("%s... (%d bytes)", s[:n], len(s))
}

// Verify GoogleProvider implements RemoteTranslator
var _ RemoteTranslator = (*GoogleProvider)(nil)
