package cfg

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		wantErr  bool
		validate func(t *testing.T, settings Settings)
	}{
		{
			name:    "defaults",
			envVars: map[string]string{},
			wantErr: false,
			validate: func(t *testing.T, settings Settings) {
				if settings.ListenAddr != ":8000" {
					t.Errorf("expected default ListenAddr :8000, got %s", settings.ListenAddr)
				}
				if settings.ModelPath != "models/model.json" {
					t.Errorf("expected default ModelPath, got %s", settings.ModelPath)
				}
				if settings.ScalerPath != "models/scaler.json" {
					t.Errorf("expected default ScalerPath, got %s", settings.ScalerPath)
				}
				if settings.APIURL != "http://127.0.0.1:8000" {
					t.Errorf("expected default APIURL, got %s", settings.APIURL)
				}
				if settings.APITimeout != 10*time.Second {
					t.Errorf("expected default APITimeout 10s, got %v", settings.APITimeout)
				}
				if !settings.MetricsEnabled {
					t.Error("expected metrics to be enabled by default")
				}
				if settings.LogFormat != "json" {
					t.Errorf("expected default LogFormat json, got %s", settings.LogFormat)
				}
			},
		},
		{
			name: "custom settings",
			envVars: map[string]string{
				"LISTEN_ADDR":     ":9000",
				"MODEL_PATH":      "/srv/artifacts/model.json",
				"SCALER_PATH":     "/srv/artifacts/scaler.json",
				"METRICS_ENABLED": "false",
				"FRONTEND_ADDR":   ":9501",
				"API_URL":         "http://inference:9000",
				"API_TIMEOUT":     "3s",
				"LOG_LEVEL":       "debug",
				"LOG_FORMAT":      "console",
			},
			wantErr: false,
			validate: func(t *testing.T, settings Settings) {
				if settings.ListenAddr != ":9000" {
					t.Errorf("expected ListenAddr :9000, got %s", settings.ListenAddr)
				}
				if settings.ModelPath != "/srv/artifacts/model.json" {
					t.Errorf("expected custom ModelPath, got %s", settings.ModelPath)
				}
				if settings.ScalerPath != "/srv/artifacts/scaler.json" {
					t.Errorf("expected custom ScalerPath, got %s", settings.ScalerPath)
				}
				if settings.MetricsEnabled {
					t.Error("expected metrics to be disabled")
				}
				if settings.FrontendAddr != ":9501" {
					t.Errorf("expected FrontendAddr :9501, got %s", settings.FrontendAddr)
				}
				if settings.APIURL != "http://inference:9000" {
					t.Errorf("expected custom APIURL, got %s", settings.APIURL)
				}
				if settings.APITimeout != 3*time.Second {
					t.Errorf("expected APITimeout 3s, got %v", settings.APITimeout)
				}
				if settings.LogLevel != "debug" {
					t.Errorf("expected LogLevel debug, got %s", settings.LogLevel)
				}
			},
		},
		{
			name: "unparsable duration falls back to default",
			envVars: map[string]string{
				"API_TIMEOUT": "soon",
			},
			wantErr: false,
			validate: func(t *testing.T, settings Settings) {
				if settings.APITimeout != 10*time.Second {
					t.Errorf("expected fallback APITimeout 10s, got %v", settings.APITimeout)
				}
			},
		},
		{
			name: "API URL without scheme",
			envVars: map[string]string{
				"API_URL": "127.0.0.1:8000",
			},
			wantErr: true,
		},
		{
			name: "API timeout out of range",
			envVars: map[string]string{
				"API_TIMEOUT": "10m",
			},
			wantErr: true,
		},
		{
			name: "unknown log level",
			envVars: map[string]string{
				"LOG_LEVEL": "verbose",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearTestEnv(t)

			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}

			settings, err := loadFromEnv()

			if tt.wantErr && err == nil {
				t.Error("expected error but got none")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}

			if !tt.wantErr && tt.validate != nil {
				tt.validate(t, settings)
			}
		})
	}
}

func TestLoadFromYAML(t *testing.T) {
	tests := []struct {
		name         string
		yamlContent  string
		envOverrides map[string]string
		wantErr      bool
		validate     func(t *testing.T, settings Settings)
	}{
		{
			name: "valid YAML config",
			yamlContent: `
server:
  listenAddr: ":8100"
  metricsEnabled: false
  shutdownTimeout: "20s"

artifacts:
  modelPath: "artifacts/model.json"
  scalerPath: "artifacts/scaler.json"

frontend:
  listenAddr: ":8600"
  apiURL: "http://localhost:8100"
  apiTimeout: "5s"

log:
  level: "warn"
  format: "console"
`,
			wantErr: false,
			validate: func(t *testing.T, settings Settings) {
				if settings.ListenAddr != ":8100" {
					t.Errorf("expected ListenAddr :8100, got %s", settings.ListenAddr)
				}
				if settings.MetricsEnabled {
					t.Error("expected metrics to be disabled from YAML")
				}
				if settings.ShutdownTimeout != 20*time.Second {
					t.Errorf("expected ShutdownTimeout 20s, got %v", settings.ShutdownTimeout)
				}
				if settings.ModelPath != "artifacts/model.json" {
					t.Errorf("expected YAML ModelPath, got %s", settings.ModelPath)
				}
				if settings.ScalerPath != "artifacts/scaler.json" {
					t.Errorf("expected YAML ScalerPath, got %s", settings.ScalerPath)
				}
				if settings.APIURL != "http://localhost:8100" {
					t.Errorf("expected YAML APIURL, got %s", settings.APIURL)
				}
				if settings.APITimeout != 5*time.Second {
					t.Errorf("expected APITimeout 5s, got %v", settings.APITimeout)
				}
				if settings.LogLevel != "warn" || settings.LogFormat != "console" {
					t.Errorf("expected warn/console logging, got %s/%s", settings.LogLevel, settings.LogFormat)
				}
			},
		},
		{
			name: "YAML with env overrides",
			yamlContent: `
artifacts:
  modelPath: "artifacts/model.json"
  scalerPath: "artifacts/scaler.json"
`,
			envOverrides: map[string]string{
				"MODEL_PATH":  "/override/model.json",
				"API_TIMEOUT": "30s",
			},
			wantErr: false,
			validate: func(t *testing.T, settings Settings) {
				if settings.ModelPath != "/override/model.json" {
					t.Errorf("expected env override ModelPath, got %s", settings.ModelPath)
				}
				if settings.ScalerPath != "artifacts/scaler.json" {
					t.Errorf("expected YAML ScalerPath, got %s", settings.ScalerPath)
				}
				if settings.APITimeout != 30*time.Second {
					t.Errorf("expected env override APITimeout 30s, got %v", settings.APITimeout)
				}
				if !settings.MetricsEnabled {
					t.Error("expected metrics enabled when YAML omits the key")
				}
			},
		},
		{
			name: "YAML with invalid values",
			yamlContent: `
frontend:
  apiURL: "ftp://localhost"
`,
			wantErr: true,
		},
		{
			name:        "invalid YAML",
			yamlContent: "server: [unterminated",
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearTestEnv(t)

			configPath := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(configPath, []byte(tt.yamlContent), 0o644); err != nil {
				t.Fatalf("failed to write config file: %v", err)
			}

			for key, value := range tt.envOverrides {
				t.Setenv(key, value)
			}

			settings, err := loadFromYAML(configPath)

			if tt.wantErr && err == nil {
				t.Error("expected error but got none")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}

			if !tt.wantErr && tt.validate != nil {
				tt.validate(t, settings)
			}
		})
	}
}

func TestLoadFromYAML_MissingFile(t *testing.T) {
	clearTestEnv(t)

	_, err := loadFromYAML(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoad_UsesConfigFile(t *testing.T) {
	clearTestEnv(t)
	chdir(t, t.TempDir())

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	content := "server:\n  listenAddr: \":8200\"\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv("CONFIG_FILE", configPath)

	settings, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.ListenAddr != ":8200" {
		t.Errorf("expected ListenAddr from config file, got %s", settings.ListenAddr)
	}
}

func TestLoad_ReadsDotEnv(t *testing.T) {
	clearTestEnv(t)
	dir := t.TempDir()
	chdir(t, dir)

	// Registered so t.Setenv restores the variable once godotenv has set it.
	t.Setenv("SCALER_PATH", "")
	os.Unsetenv("SCALER_PATH")

	content := "SCALER_PATH=/from/dotenv/scaler.json\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}

	settings, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.ScalerPath != "/from/dotenv/scaler.json" {
		t.Errorf("expected ScalerPath from .env, got %s", settings.ScalerPath)
	}
}

func TestLoad_WithoutDotEnv(t *testing.T) {
	clearTestEnv(t)
	chdir(t, t.TempDir())

	settings, err := Load()
	if err != nil {
		t.Fatalf("missing .env should not be an error, got: %v", err)
	}
	if settings.ListenAddr != ":8000" {
		t.Errorf("expected default ListenAddr, got %s", settings.ListenAddr)
	}
}

// clearTestEnv blanks every variable the loader reads for the duration of the test.
func clearTestEnv(t *testing.T) {
	envVars := []string{
		"CONFIG_FILE", "LISTEN_ADDR", "MODEL_PATH", "SCALER_PATH", "METRICS_ENABLED",
		"FRONTEND_ADDR", "API_URL", "API_TIMEOUT", "SHUTDOWN_TIMEOUT", "LOG_LEVEL", "LOG_FORMAT",
	}

	for _, env := range envVars {
		if val := os.Getenv(env); val != "" {
			t.Setenv(env, "")
		}
	}
}

// chdir changes the working directory for the duration of the test,
// restoring the previous one on cleanup (equivalent to testing.T.Chdir).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("failed to chdir to %s: %v", dir, err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("failed to restore working directory: %v", err)
		}
	})
}
