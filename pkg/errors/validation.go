package errors

import (
	"strings"
	"unicode"
)

// Test modes accepted by ValidateTestMode. The mode gates how a local
// repository index may be used: "off" forbids local paths entirely,
// "readonly" reads the index as-is, and "simulate" additionally allows
// querying packages the index does not declare.
const (
	TestModeOff      = "off"
	TestModeReadonly = "readonly"
	TestModeSimulate = "simulate"
)

// Tree render modes accepted by ValidateTreeMode.
const (
	TreeModeOff      = "off"
	TreeModeSimple   = "simple"
	TreeModeDetailed = "detailed"
)

// ValidatePackageName validates a package name for safety and correctness.
//
// The rules are intentionally conservative:
//   - No empty names or names of only whitespace
//   - No whitespace anywhere in the name
//   - No control characters
//   - Maximum length of 256 characters
func ValidatePackageName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidPackage, "package name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidPackage, "package name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsSpace(r) {
			return New(ErrCodeInvalidPackage, "package name cannot contain whitespace")
		}
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPackage, "package name contains invalid control characters")
		}
	}

	return nil
}

// ValidateURL validates a repository URL string.
// It ensures the URL has a safe scheme (http, https, ftp or ftps) and a host.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "repository URL cannot be empty")
	}

	rest := ""
	for _, scheme := range []string{"http://", "https://", "ftp://", "ftps://"} {
		if strings.HasPrefix(rawURL, scheme) {
			rest = rawURL[len(scheme):]
			break
		}
	}
	if rest == "" {
		return New(ErrCodeInvalidInput, "repository URL must use http(s) or ftp(s) scheme: %q", rawURL)
	}

	host, _, _ := strings.Cut(rest, "/")
	if host == "" {
		return New(ErrCodeInvalidInput, "repository URL has no host: %q", rawURL)
	}

	return nil
}

// ValidateDepth validates a maximum traversal depth.
// Depth must be a non-negative integer; zero is legal and yields an
// empty graph.
func ValidateDepth(depth int) error {
	if depth < 0 {
		return New(ErrCodeInvalidDepth, "max depth must be an integer >= 0, got %d", depth)
	}
	return nil
}

// ValidateTestMode validates the local-repository test mode.
func ValidateTestMode(mode string) error {
	switch mode {
	case TestModeOff, TestModeReadonly, TestModeSimulate:
		return nil
	}
	return New(ErrCodeInvalidMode, "test mode must be one of off, readonly, simulate: %q", mode)
}

// ValidateTreeMode validates the ASCII tree render mode.
func ValidateTreeMode(mode string) error {
	switch mode {
	case TreeModeOff, TreeModeSimple, TreeModeDetailed:
		return nil
	}
	return New(ErrCodeInvalidMode, "ascii tree mode must be one of off, simple, detailed: %q", mode)
}
