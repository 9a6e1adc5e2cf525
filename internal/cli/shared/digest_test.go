package shared

import (
	"strings"
	"testing"
)

func TestVerifyDigestEmptySpecPasses(t *testing.T) {
	if err := VerifyDigest([]byte("content"), ""); err != nil {
		t.Fatalf("empty spec should pass: %v", err)
	}
}

func TestVerifyDigestAlgorithms(t *testing.T) {
	content := []byte("hello seshat")
	for _, spec := range []string{
		DigestAlgorithmSHA256 + ":" + SHA256Hex(content),
		DigestAlgorithmBLAKE3 + ":" + BLAKE3Hex(content),
		DigestAlgorithmMD5 + ":" + MD5Hex(content),
	} {
		if err := VerifyDigest(content, spec); err != nil {
			t.Fatalf("VerifyDigest(%s) failed: %v", spec, err)
		}
	}
}

func TestVerifyDigestMismatch(t *testing.T) {
	good := SHA256Hex([]byte("a"))
	if err := VerifyDigest([]byte("b"), "sha256:"+good); err == nil {
		t.Fatalf("expected digest mismatch")
	}
}

func TestVerifyDigestRejectsMalformedSpec(t *testing.T) {
	for _, spec := range []string{"sha256", "sha256:", ":abcd", "sha256:zz", "whirlpool:abcd"} {
		if err := VerifyDigest([]byte("x"), spec); err == nil {
			t.Fatalf("expected error for spec %q", spec)
		}
	}
}

func TestBuildEnvPrependsLocalBinOnce(t *testing.T) {
	t.Setenv("PATH", "/usr/bin")
	env := BuildEnv(map[string]string{"ENV": "dev"})

	var path string
	var hasEnv bool
	for _, entry := range env {
		if strings.HasPrefix(entry, "PATH=") {
			path = strings.TrimPrefix(entry, "PATH=")
		}
		if entry == "ENV=dev" {
			hasEnv = true
		}
	}
	if !strings.HasPrefix(path, LocalBinDir()) {
		t.Fatalf("local bin not prepended to PATH: %s", path)
	}
	if !hasEnv {
		t.Fatalf("extra var missing from env")
	}

	t.Setenv("PATH", LocalBinDir()+":/usr/bin")
	env = BuildEnv(nil)
	for _, entry := range env {
		if strings.HasPrefix(entry, "PATH=") {
			if strings.Count(entry, LocalBinDir()) != 1 {
				t.Fatalf("local bin duplicated in PATH: %s", entry)
			}
		}
	}
}
