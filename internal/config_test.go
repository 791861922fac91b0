package internal

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	pkgconfig "github.com/starford/laguz/pkg/config"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestShippedConfigFileLoads(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(filepath.Join("..", "config", "config.yaml"), cfg); err != nil {
		t.Fatalf("shipped config should load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("shipped config should validate: %v", err)
	}
	if cfg.App.HTTP.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.App.HTTP.Port)
	}
}

func TestPipelineConfig_RequiresRoots(t *testing.T) {
	cfg := PipelineConfig{MappingFile: "m.txt"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("missing roots should fail validation")
	}
}

func TestPipelineConfig_RootsMustDiffer(t *testing.T) {
	cfg := PipelineConfig{InputRoot: "./x", OutputRoot: "./x", MappingFile: "m.txt"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("identical roots should fail validation")
	}
	if !strings.Contains(err.Error(), "must differ") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestPipelineConfig_Debounce(t *testing.T) {
	cfg := PipelineConfig{DebounceMs: 250}
	if got := cfg.Debounce(); got != 250*time.Millisecond {
		t.Errorf("debounce = %v, want 250ms", got)
	}
}

func TestArchiveConfig_DisabledSkipsValidation(t *testing.T) {
	cfg := ArchiveConfig{Enabled: false, StagingDir: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled archive should pass: %v", err)
	}
}

func TestArchiveConfig_EnabledRequiresStagingDir(t *testing.T) {
	cfg := ArchiveConfig{Enabled: true, StagingDir: ""}
	if err := cfg.Validate(); err == nil {
		t.Fatal("enabled archive without staging dir should fail")
	}
}

func TestHTTPConfig_PortRange(t *testing.T) {
	cfg := HTTPConfig{Port: 70000}
	if err := cfg.Validate(); err == nil {
		t.Fatal("out of range port should fail")
	}
	cfg.Port = 8080
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid port should pass: %v", err)
	}
	if cfg.Address() != ":8080" {
		t.Errorf("address = %q", cfg.Address())
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_SectionValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("full config validate should catch auth error")
	}

	cfg = NewDefaultConfig()
	cfg.Pipeline.OutputRoot = cfg.Pipeline.InputRoot
	if err := cfg.Validate(); err == nil {
		t.Fatal("full config validate should catch pipeline error")
	}
}
