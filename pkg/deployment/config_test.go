package deployment

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deployment.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "deployment.yml")); err == nil {
		t.Fatalf("expected error for missing deployment file")
	}
}

func TestLoadEmptyFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.CodeArtifactRepository != DefaultRepository {
		t.Fatalf("unexpected repository default: %s", cfg.CodeArtifactRepository)
	}
	if len(cfg.Profiles) != 1 || cfg.Profiles[0] != "infra" {
		t.Fatalf("unexpected profiles default: %v", cfg.Profiles)
	}
	if !cfg.LoadSecrets() {
		t.Fatalf("load_secrets_from_bws should default to true")
	}
	if len(cfg.Jobs()) != 0 {
		t.Fatalf("empty config should have no jobs")
	}
}

func TestLoadMalformedFileFails(t *testing.T) {
	if _, err := Load(writeConfig(t, "aws_region: [broken")); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestLoadFullDescriptor(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
aws_account_id: "123456789012"
aws_region: us-east-1
codeartifact_domain: data-platform
profiles: [infra, api]
load_secrets_from_bws: false
dags_path: /opt/airflow/dags
jobs_path: /opt/spark/jobs
airflow_dags:
  reporting-dag:
    version: "2.1.0"
    schedule: "@daily"
spark_jobs:
  ingest:
    version: "1.0.0"
`))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LoadSecrets() {
		t.Fatalf("load_secrets_from_bws=false should be honored")
	}
	if got := cfg.RegistryHost(); got != "123456789012.dkr.ecr.us-east-1.amazonaws.com" {
		t.Fatalf("unexpected registry host: %s", got)
	}

	jobs := cfg.Jobs()
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0].Name != "ingest" || jobs[1].Name != "reporting-dag" {
		t.Fatalf("jobs not sorted by name: %v", jobs)
	}
	if jobs[1].Version != "2.1.0" {
		t.Fatalf("unexpected version: %s", jobs[1].Version)
	}
	if jobs[1].Params["schedule"] != "@daily" {
		t.Fatalf("inline params not captured: %v", jobs[1].Params)
	}
}

func TestRequireHelpers(t *testing.T) {
	cfg := &Config{}
	Normalize(cfg)
	if _, err := cfg.RequireAccountID(); err == nil {
		t.Fatalf("expected missing account id error")
	}
	if _, err := cfg.RequireRegion(); err == nil {
		t.Fatalf("expected missing region error")
	}
	if _, err := cfg.RequireDomain(); err == nil {
		t.Fatalf("expected missing domain error")
	}

	cfg.AWSAccountID = "123"
	if id, err := cfg.RequireAccountID(); err != nil || id != "123" {
		t.Fatalf("RequireAccountID = %q, %v", id, err)
	}
}

func TestEnvFile(t *testing.T) {
	if got := EnvFile("prod"); got != "conf/prod/.env" {
		t.Fatalf("unexpected env file path: %s", got)
	}
}
