// ABOUTME: Tests for version constants
// ABOUTME: Ensures identification strings are usable in headers and logs
package version

import (
	"strings"
	"testing"
)

func TestIdentificationDefined(t *testing.T) {
	for name, value := range map[string]string{
		"Version":      Version,
		"Product":      Product,
		"Manufacturer": Manufacturer,
	} {
		if value == "" {
			t.Errorf("%s should not be empty", name)
		}
		if len(value) > 100 {
			t.Errorf("%s is unreasonably long", name)
		}
	}
}

func TestVersionIsSemver(t *testing.T) {
	parts := strings.Split(Version, ".")
	if len(parts) != 3 {
		t.Fatalf("expected major.minor.patch, got %q", Version)
	}
	for _, p := range parts {
		if p == "" || strings.Trim(p, "0123456789") != "" {
			t.Errorf("version part %q is not numeric", p)
		}
	}
}

func TestUserAgentSafe(t *testing.T) {
	// Version goes into a User-Agent product token
	if strings.ContainsAny(Version, " /\t\n") {
		t.Errorf("version %q contains separator characters", Version)
	}
}
