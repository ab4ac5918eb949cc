package main

import (
	"os"
	"path/filepath"
	"testing"
)

// resetFlags restores global flag state after each test.
func resetFlags(t *testing.T) {
	t.Helper()
	orig := struct{ url, key, fmt string }{flagURL, flagKey, flagFmt}
	t.Cleanup(func() {
		flagURL = orig.url
		flagKey = orig.key
		flagFmt = orig.fmt
	})
}

// isolateEnv points HOME at a temp dir and clears the CLI env vars.
func isolateEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, k := range []string{"AUDITKEEPER_URL", "AUDITKEEPER_API_KEY", "AUDITKEEPER_PROFILE"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	return home
}

func writeConfig(t *testing.T, home, content string) {
	t.Helper()
	dir := filepath.Join(home, ".auditkeeper")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestResolveConfig(t *testing.T) {
	const profiles = `
active_profile: staging
profiles:
  default:
    url: http://default:3040
    api_key: default-key
  staging:
    url: http://staging:4040
    api_key: staging-key
`

	tests := []struct {
		name    string
		env     map[string]string
		file    string
		flagURL string
		flagKey string
		wantURL string
		wantKey string
	}{
		{
			name:    "defaults without file or env",
			wantURL: defaultURL,
		},
		{
			name:    "env overrides default url",
			env:     map[string]string{"AUDITKEEPER_URL": "http://env:9090", "AUDITKEEPER_API_KEY": "env-key"},
			wantURL: "http://env:9090",
			wantKey: "env-key",
		},
		{
			name:    "explicit flag beats env",
			env:     map[string]string{"AUDITKEEPER_URL": "http://env:9090"},
			flagURL: "http://flag:1234",
			wantURL: "http://flag:1234",
		},
		{
			name:    "active profile",
			file:    profiles,
			wantURL: "http://staging:4040",
			wantKey: "staging-key",
		},
		{
			name:    "profile env selects profile",
			env:     map[string]string{"AUDITKEEPER_PROFILE": "default"},
			file:    profiles,
			wantURL: "http://default:3040",
			wantKey: "default-key",
		},
		{
			name:    "env beats profile",
			env:     map[string]string{"AUDITKEEPER_API_KEY": "env-key"},
			file:    profiles,
			wantURL: "http://staging:4040",
			wantKey: "env-key",
		},
		{
			name:    "default profile when none active",
			file:    "profiles:\n  default:\n    url: http://only:5050\n",
			wantURL: "http://only:5050",
		},
		{
			name:    "flat file",
			file:    "url: http://flat:8080\napi_key: flat-key\n",
			wantURL: "http://flat:8080",
			wantKey: "flat-key",
		},
		{
			name:    "invalid yaml ignored",
			file:    ":::not-yaml:::",
			wantURL: defaultURL,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resetFlags(t)
			home := isolateEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if tc.file != "" {
				writeConfig(t, home, tc.file)
			}

			flagURL = defaultURL
			if tc.flagURL != "" {
				flagURL = tc.flagURL
			}
			flagKey = tc.flagKey

			resolveConfig()

			if flagURL != tc.wantURL {
				t.Errorf("flagURL = %q, want %q", flagURL, tc.wantURL)
			}
			if flagKey != tc.wantKey {
				t.Errorf("flagKey = %q, want %q", flagKey, tc.wantKey)
			}
		})
	}
}

func TestWriteProfileKeepsOthers(t *testing.T) {
	home := isolateEnv(t)
	writeConfig(t, home, "profiles:\n  prod:\n    url: https://audit.school.test\n    api_key: prod-key\n")

	if _, err := writeProfile("local", profileConfig{URL: "http://localhost:3040", APIKey: "local-key"}); err != nil {
		t.Fatalf("writeProfile: %v", err)
	}

	cfg, err := loadProfiles()
	if err != nil {
		t.Fatalf("loadProfiles: %v", err)
	}
	if cfg.ActiveProfile != "local" {
		t.Errorf("active profile = %q, want local", cfg.ActiveProfile)
	}
	if cfg.Profiles["prod"].APIKey != "prod-key" {
		t.Errorf("prod profile lost: %+v", cfg.Profiles)
	}
	if cfg.Profiles["local"].URL != "http://localhost:3040" {
		t.Errorf("local profile = %+v", cfg.Profiles["local"])
	}

	info, err := os.Stat(filepath.Join(home, ".auditkeeper", "config.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("config mode = %o, want 600", info.Mode().Perm())
	}
}
