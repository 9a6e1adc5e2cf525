package deployment

// Config is the deployment descriptor loaded from deployment.yml. It is
// constructed once per invocation and passed explicitly; nothing mutates
// it after Load.
type Config struct {
	AWSAccountID           string `yaml:"aws_account_id"`
	AWSRegion              string `yaml:"aws_region"`
	CodeArtifactDomain     string `yaml:"codeartifact_domain"`
	CodeArtifactRepository string `yaml:"codeartifact_repository"`

	Profiles           []string `yaml:"profiles"`
	LoadSecretsFromBWS *bool    `yaml:"load_secrets_from_bws"`
	SkipECRLogin       bool     `yaml:"skip_ecr_login"`
	BWSAccessToken     string   `yaml:"bws_access_token"`

	DagsPath string `yaml:"dags_path"`
	JobsPath string `yaml:"jobs_path"`

	RestartServices []string `yaml:"restart_services"`

	// Job maps keyed by package name. Duplicate names across documents
	// follow YAML map semantics: last one wins, silently.
	AirflowDags map[string]JobSpec `yaml:"airflow_dags"`
	SparkJobs   map[string]JobSpec `yaml:"spark_jobs"`
}

// JobSpec is one deployable package entry. Params carries every key besides
// version verbatim; the pipeline feeds it to template rendering.
type JobSpec struct {
	Version string            `yaml:"version"`
	Params  map[string]string `yaml:",inline"`
}

// Job is a resolved job entry ready for one pipeline pass.
type Job struct {
	Name    string
	Version string
	Params  map[string]string
}
