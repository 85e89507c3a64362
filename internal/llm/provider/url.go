package provider

import (
	"fmt"
	"net/url"
	"strings"
)

const chatCompletionsPath = "/chat/completions"

// NormalizeBaseURL canonicalizes the configured endpoint to the API root
// that chat completions hang off:
//
//	https://api.example.com                      -> https://api.example.com/v1
//	https://api.example.com/v1/                  -> https://api.example.com/v1
//	https://proxy.example.com/v1/chat/completions -> https://proxy.example.com/v1
//
// Query strings and fragments are dropped.
func NormalizeBaseURL(raw string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("llm base url must be a valid http/https URL: %w", err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	if (scheme != "http" && scheme != "https") || parsed.Host == "" {
		return "", fmt.Errorf("llm base url must be a valid http/https URL")
	}

	path := strings.TrimRight(parsed.Path, "/")
	if strings.HasSuffix(strings.ToLower(path), chatCompletionsPath) {
		path = path[:len(path)-len(chatCompletionsPath)]
	}
	if path == "" {
		path = "/v1"
	}

	return strings.TrimRight(scheme+"://"+parsed.Host+path, "/"), nil
}
