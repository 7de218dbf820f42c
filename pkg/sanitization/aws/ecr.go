package aws

import (
	"regexp"
	"strings"

	"github.com/talves/gameservers/pkg/sanitization"
)

var ecrRepositorySanitizer = sanitization.NewSanitizer(
	[]sanitization.Rule{
		{
			Pattern:     regexp.MustCompile(`[^a-z0-9._/\-]`),
			Replacement: "-",
		},
		{
			Pattern:     regexp.MustCompile(`^[^a-z0-9]+`),
			Replacement: "",
		},
	},
	256,
)

// EcrRepositoryName returns a sanitized repository name. Repository names must be lowercase.
func EcrRepositoryName(name string) string {
	return ecrRepositorySanitizer.Apply(strings.ToLower(name))
}
