package xaiapi

import "testing"

func TestEnvCredential(t *testing.T) {
	t.Setenv("TEST_XAI_KEY", "sk-123")
	key, err := EnvCredential("TEST_XAI_KEY")()
	if err != nil {
		t.Fatalf("EnvCredential() error = %v", err)
	}
	if key != "sk-123" {
		t.Errorf("key = %q, want sk-123", key)
	}
}

func TestEnvCredential_Missing(t *testing.T) {
	t.Setenv("TEST_XAI_KEY", "")
	if _, err := EnvCredential("TEST_XAI_KEY")(); err == nil {
		t.Error("expected error for unset variable")
	}
}

func TestEnvCredential_Whitespace(t *testing.T) {
	t.Setenv("TEST_XAI_KEY", "   ")
	if _, err := EnvCredential("TEST_XAI_KEY")(); err == nil {
		t.Error("expected error for blank variable")
	}
}

func TestStaticCredential(t *testing.T) {
	key, err := StaticCredential("fixed")()
	if err != nil || key != "fixed" {
		t.Errorf("StaticCredential() = %q, %v", key, err)
	}
}

func TestBaseURL_Override(t *testing.T) {
	t.Setenv("XAI_BASE_URL", "http://localhost:8080/v1/")
	if got := BaseURL(); got != "http://localhost:8080/v1" {
		t.Errorf("BaseURL() = %q, want trailing slash trimmed", got)
	}
}

func TestBaseURL_Default(t *testing.T) {
	t.Setenv("XAI_BASE_URL", "")
	if got := BaseURL(); got != DefaultBaseURL {
		t.Errorf("BaseURL() = %q, want %q", got, DefaultBaseURL)
	}
}
