// Package cloud resolves AWS credentials and performs registry and artifact
// repository authentication through the aws and docker CLIs.
package cloud

import "os"

// Credential environment variable names.
const (
	AccessKeyVar    = "AWS_ACCESS_KEY_ID"
	SecretKeyVar    = "AWS_SECRET_ACCESS_KEY"
	SessionTokenVar = "AWS_SESSION_TOKEN"
)

// Provider is one ordered lookup source for Resolve.
type Provider func(key string) string

// EnvProvider reads from the process environment.
func EnvProvider() Provider {
	return os.Getenv
}

// MapProvider reads from an in-memory secret map.
func MapProvider(values map[string]string) Provider {
	return func(key string) string { return values[key] }
}

// StaticProvider always yields the given value; used as the trailing default.
func StaticProvider(value string) Provider {
	return func(string) string { return value }
}

// Resolve returns the first non-empty value produced by the providers in
// order, or "" when none match.
func Resolve(key string, providers ...Provider) string {
	for _, provider := range providers {
		if value := provider(key); value != "" {
			return value
		}
	}
	return ""
}

// CredentialSet is the ephemeral credential bundle injected into subprocess
// environments. It is never persisted.
type CredentialSet struct {
	AccessKey    string
	SecretKey    string
	SessionToken string
	Region       string
}

// Credentials resolves the credential trio against the environment first,
// then the secret map. SessionToken is optional.
func Credentials(secrets map[string]string) CredentialSet {
	lookup := []Provider{EnvProvider(), MapProvider(secrets)}
	return CredentialSet{
		AccessKey:    Resolve(AccessKeyVar, lookup...),
		SecretKey:    Resolve(SecretKeyVar, lookup...),
		SessionToken: Resolve(SessionTokenVar, lookup...),
	}
}

// Complete reports whether the mandatory key pair is present.
func (c CredentialSet) Complete() bool {
	return c.AccessKey != "" && c.SecretKey != ""
}

// EnvVars returns the variables to inject into a subprocess environment.
func (c CredentialSet) EnvVars() map[string]string {
	vars := map[string]string{
		AccessKeyVar: c.AccessKey,
		SecretKeyVar: c.SecretKey,
		"AWS_REGION": c.Region,
	}
	if c.SessionToken != "" {
		vars[SessionTokenVar] = c.SessionToken
	}
	return vars
}
