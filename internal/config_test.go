package internal

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestVaultConfig_RootFromConfigDir(t *testing.T) {
	cfg := VaultConfig{ConfigDir: "/home/me/vault/.obsidian"}
	if got := cfg.Root(); got != filepath.FromSlash("/home/me/vault") {
		t.Errorf("root = %q", got)
	}

	// Trailing separator on the config dir must not change the result.
	cfg = VaultConfig{ConfigDir: "/home/me/vault/.obsidian/"}
	if got := cfg.Root(); got != filepath.FromSlash("/home/me/vault") {
		t.Errorf("root with trailing sep = %q", got)
	}
}

func TestVaultConfig_ConfigDirWinsOverPath(t *testing.T) {
	cfg := VaultConfig{ConfigDir: "/a/vault/.obsidian", Path: "/other"}
	if got := cfg.Root(); got != filepath.FromSlash("/a/vault") {
		t.Errorf("root = %q", got)
	}
}

func TestVaultConfig_PathFallback(t *testing.T) {
	cfg := VaultConfig{Path: "/plain/vault"}
	if got := cfg.Root(); got != "/plain/vault" {
		t.Errorf("root = %q", got)
	}
}

func TestVaultConfig_RequiresSomething(t *testing.T) {
	cfg := VaultConfig{}
	if err := cfg.Validate(); err == nil {
		t.Error("empty vault config should fail validation")
	}
}

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
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

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}
