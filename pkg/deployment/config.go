package deployment

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

const (
	DefaultFileName   = "deployment.yml"
	DefaultEnv        = "dev"
	DefaultRepository = "python-artifacts"

	envFileTemplate  = "conf/%s/.env"
	registryTemplate = "%s.dkr.ecr.%s.amazonaws.com"
)

// Load parses the deployment descriptor at path. A missing or unparsable
// file is an error; an empty file yields an empty config.
func Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("deployment file %q: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("parse deployment file %q: %w", path, err)
	}
	Normalize(&cfg)
	return &cfg, nil
}

func Normalize(cfg *Config) {
	if cfg.CodeArtifactRepository == "" {
		cfg.CodeArtifactRepository = DefaultRepository
	}
	if len(cfg.Profiles) == 0 {
		cfg.Profiles = []string{"infra"}
	}
	if len(cfg.RestartServices) == 0 {
		cfg.RestartServices = []string{"apache_livy", "airflow-scheduler"}
	}
	if cfg.AirflowDags == nil {
		cfg.AirflowDags = map[string]JobSpec{}
	}
	if cfg.SparkJobs == nil {
		cfg.SparkJobs = map[string]JobSpec{}
	}
}

// LoadSecrets reports whether Bitwarden secrets should be loaded; unset
// defaults to true.
func (c *Config) LoadSecrets() bool {
	if c.LoadSecretsFromBWS == nil {
		return true
	}
	return *c.LoadSecretsFromBWS
}

// Jobs merges airflow_dags and spark_jobs into a name-sorted slice so a run
// processes packages in a deterministic order.
func (c *Config) Jobs() []Job {
	merged := map[string]JobSpec{}
	for name, spec := range c.AirflowDags {
		merged[name] = spec
	}
	for name, spec := range c.SparkJobs {
		merged[name] = spec
	}

	names := make([]string, 0, len(merged))
	for name := range merged {
		names = append(names, name)
	}
	sort.Strings(names)

	jobs := make([]Job, 0, len(names))
	for _, name := range names {
		spec := merged[name]
		jobs = append(jobs, Job{Name: name, Version: spec.Version, Params: spec.Params})
	}
	return jobs
}

// EnvFile returns the per-environment compose env file path.
func EnvFile(env string) string {
	return fmt.Sprintf(envFileTemplate, env)
}

// RegistryHost returns the container registry address for the configured
// account and region. RequireAccount/RequireRegion must pass first.
func (c *Config) RegistryHost() string {
	return fmt.Sprintf(registryTemplate, c.AWSAccountID, c.AWSRegion)
}

func (c *Config) RequireAccountID() (string, error) {
	if c.AWSAccountID == "" {
		return "", fmt.Errorf("aws_account_id is not configured; add it to your %s", DefaultFileName)
	}
	return c.AWSAccountID, nil
}

func (c *Config) RequireRegion() (string, error) {
	if c.AWSRegion == "" {
		return "", fmt.Errorf("aws_region is not configured; add it to your %s", DefaultFileName)
	}
	return c.AWSRegion, nil
}

func (c *Config) RequireDomain() (string, error) {
	if c.CodeArtifactDomain == "" {
		return "", fmt.Errorf("codeartifact_domain is not configured; add it to your %s", DefaultFileName)
	}
	return c.CodeArtifactDomain, nil
}
