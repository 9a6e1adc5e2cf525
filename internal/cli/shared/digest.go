package shared

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/zeebo/blake3"
)

const (
	DigestAlgorithmBLAKE3 = "blake3"
	DigestAlgorithmSHA256 = "sha256"
	DigestAlgorithmMD5    = "md5"
)

// SHA256Hex returns lowercase hex encoded digest for content.
func SHA256Hex(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// BLAKE3Hex returns lowercase hex encoded digest for content.
func BLAKE3Hex(content []byte) string {
	sum := blake3.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// MD5Hex returns lowercase hex encoded digest for content.
func MD5Hex(content []byte) string {
	sum := md5.Sum(content)
	return hex.EncodeToString(sum[:])
}

// VerifyDigest checks content against an "algorithm:hexdigest" spec. An
// empty spec passes.
func VerifyDigest(content []byte, spec string) error {
	if strings.TrimSpace(spec) == "" {
		return nil
	}
	algorithm, digest, err := parseDigestSpec(spec)
	if err != nil {
		return err
	}
	computed, err := computeDigest(content, algorithm)
	if err != nil {
		return err
	}
	if computed != digest {
		return errors.New("digest mismatch")
	}
	return nil
}

func parseDigestSpec(value string) (string, string, error) {
	raw := strings.TrimSpace(strings.ToLower(value))
	algorithm, digest, ok := strings.Cut(raw, ":")
	if !ok || strings.TrimSpace(algorithm) == "" || strings.TrimSpace(digest) == "" {
		return "", "", fmt.Errorf("invalid digest format %q", value)
	}
	if _, err := hex.DecodeString(digest); err != nil {
		return "", "", fmt.Errorf("invalid digest hex %q", value)
	}
	return algorithm, digest, nil
}

func computeDigest(content []byte, algorithm string) (string, error) {
	switch algorithm {
	case DigestAlgorithmBLAKE3:
		return BLAKE3Hex(content), nil
	case DigestAlgorithmSHA256:
		return SHA256Hex(content), nil
	case DigestAlgorithmMD5:
		return MD5Hex(content), nil
	default:
		return "", fmt.Errorf("unsupported digest algorithm %q", algorithm)
	}
}
