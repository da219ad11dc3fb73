package openai

import "testing"

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient("", "gpt-3.5-turbo"); err == nil {
		t.Fatalf("expected error for missing api key")
	}
	if _, err := NewClient("sk-test", "  "); err == nil {
		t.Fatalf("expected error for missing model")
	}
	c, err := NewClient("sk-test", "gpt-3.5-turbo")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if c.model != "gpt-3.5-turbo" {
		t.Fatalf("unexpected model %q", c.model)
	}
}
