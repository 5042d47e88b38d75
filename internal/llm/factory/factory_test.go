package factory

import (
	"strings"
	"testing"

	"github.com/vantagelabs/vantage/internal/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.LLMConfig
		wantName string
		wantErr  bool
	}{
		{
			name: "claude provider",
			cfg: config.LLMConfig{
				Provider: "claude",
				Claude:   config.ClaudeConfig{APIKey: "test-key"},
			},
			wantName: "claude",
		},
		{
			name: "openai provider",
			cfg: config.LLMConfig{
				Provider: "openai",
				OpenAI:   config.OpenAIConfig{APIKey: "test-key"},
			},
			wantName: "openai",
		},
		{
			name:    "unknown provider",
			cfg:     config.LLMConfig{Provider: "bard"},
			wantErr: true,
		},
		{
			name:    "claude without key",
			cfg:     config.LLMConfig{Provider: "claude"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if p.Name() != tt.wantName {
				t.Errorf("Name() = %s, want %s", p.Name(), tt.wantName)
			}
		})
	}
}

func TestNew_UnknownProviderMessage(t *testing.T) {
	_, err := New(config.LLMConfig{Provider: "bard"})
	if err == nil || !strings.Contains(err.Error(), "bard") {
		t.Errorf("error should name the provider, got %v", err)
	}
}
