package xaiapi

import (
	"fmt"
	"os"
	"strings"
)

// DefaultBaseURL is the xAI API endpoint.
const DefaultBaseURL = "https://api.x.ai/v1"

// CredentialEnvVar is the environment variable carrying the API key.
const CredentialEnvVar = "XAI_API_KEY"

// CredentialProvider supplies the API credential. It is injected at
// startup so tests can substitute a fixed key without touching the
// process environment.
type CredentialProvider func() (string, error)

// EnvCredential returns a provider that reads the named environment
// variable, failing when it is unset or blank.
func EnvCredential(name string) CredentialProvider {
	return func() (string, error) {
		key := strings.TrimSpace(os.Getenv(name))
		if key == "" {
			return "", fmt.Errorf("%s environment variable is not set", name)
		}
		return key, nil
	}
}

// StaticCredential returns a provider that always yields key.
func StaticCredential(key string) CredentialProvider {
	return func() (string, error) {
		return key, nil
	}
}

// BaseURL returns the endpoint to use, honoring an XAI_BASE_URL
// override for self-hosted gateways.
func BaseURL() string {
	if url := os.Getenv("XAI_BASE_URL"); url != "" {
		return strings.TrimRight(url, "/")
	}
	return DefaultBaseURL
}
