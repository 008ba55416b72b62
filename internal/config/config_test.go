package config

import "testing"

func TestValidate_InvalidStorageBackend(t *testing.T) {
	cfg := Config{
		HTTP:    HTTPConfig{Port: 8080},
		Storage: StorageConfig{Backend: "ftp"},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid storage backend")
	}

	expected := `storage.backend must be "local" or "minio", got "ftp"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_MinioBackendRequiresEndpoint(t *testing.T) {
	cfg := Config{
		HTTP: HTTPConfig{Port: 8080},
		Storage: StorageConfig{
			Backend: "minio",
			Minio:   MinioConfig{Bucket: "images"},
		},
	}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing minio endpoint")
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := Config{
		HTTP:    HTTPConfig{Port: 0},
		Storage: StorageConfig{Backend: "local"},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_EmbeddingKeyRequiredWithDatabase(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 8080},
		Storage:  StorageConfig{Backend: "local"},
		Database: DatabaseConfig{Addr: "localhost:6379"},
	}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing embedding api key")
	}

	cfg.Embedding.APIKey = "test-key"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error with api key set: %v", err)
	}
}

func TestValidate_KeywordOnlyMode(t *testing.T) {
	// No database address means no semantic index; embedding config is not
	// required then.
	cfg := Config{
		HTTP:    HTTPConfig{Port: 8080},
		Storage: StorageConfig{Backend: "local"},
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error in keyword-only mode: %v", err)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 8080 {
		t.Errorf("expected Port=8080, got %d", cfg.HTTP.Port)
	}
	if cfg.HTTP.BaseURL != "http://localhost:8080" {
		t.Errorf("expected BaseURL='http://localhost:8080', got %q", cfg.HTTP.BaseURL)
	}
	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Database.ReadinessTimeout)
	}
	if cfg.Vision.Gemini.Model != "gemini-1.5-flash" {
		t.Errorf("expected gemini model default, got %q", cfg.Vision.Gemini.Model)
	}
	if cfg.Embedding.Model != "text-embedding-3-small" {
		t.Errorf("expected embedding model default, got %q", cfg.Embedding.Model)
	}
	if cfg.Embedding.Dimensions != 1536 {
		t.Errorf("expected Dimensions=1536, got %d", cfg.Embedding.Dimensions)
	}
	if cfg.Storage.Backend != "local" {
		t.Errorf("expected Backend='local', got %q", cfg.Storage.Backend)
	}
	if cfg.Storage.Dir != "public" {
		t.Errorf("expected Dir='public', got %q", cfg.Storage.Dir)
	}
	if cfg.Process.Concurrency != 4 {
		t.Errorf("expected Concurrency=4, got %d", cfg.Process.Concurrency)
	}
	if cfg.Process.MaxBatchSize != 100 {
		t.Errorf("expected MaxBatchSize=100, got %d", cfg.Process.MaxBatchSize)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 9090, BaseURL: "https://img.example.com", ReadTimeoutSec: 15, WriteTimeoutSec: 20, ShutdownSec: 5},
		Database: DatabaseConfig{ReadinessTimeout: 15},
		Storage:  StorageConfig{Backend: "minio", Dir: "uploads"},
		Process:  ProcessConfig{Concurrency: 8, MaxBatchSize: 50},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.BaseURL != "https://img.example.com" {
		t.Errorf("expected BaseURL preserved, got %q", cfg.HTTP.BaseURL)
	}
	if cfg.HTTP.ReadTimeoutSec != 15 {
		t.Errorf("expected ReadTimeoutSec=15, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Storage.Backend != "minio" {
		t.Errorf("expected Backend='minio', got %q", cfg.Storage.Backend)
	}
	if cfg.Process.Concurrency != 8 {
		t.Errorf("expected Concurrency=8, got %d", cfg.Process.Concurrency)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("SNAPQUERY_TEST_KEY", "secret")

	in := []byte("api_key: ${SNAPQUERY_TEST_KEY}\naddr: ${SNAPQUERY_TEST_ADDR:-localhost:6379}\n")
	out := string(expandEnvVars(in))

	want := "api_key: secret\naddr: localhost:6379\n"
	if out != want {
		t.Errorf("unexpected expansion:\ngot:  %q\nwant: %q", out, want)
	}
}
