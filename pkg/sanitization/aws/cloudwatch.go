package aws

import (
	"regexp"

	"github.com/talves/gameservers/pkg/sanitization"
)

// CloudwatchLogGroupSanitizer returns a sanitized log group name when applied.
var CloudwatchLogGroupSanitizer = sanitization.NewSanitizer(
	[]sanitization.Rule{
		{
			Pattern:     regexp.MustCompile(`[^\w\-/.#]`),
			Replacement: "_",
		},
	},
	512,
)

// DashboardSanitizer returns a sanitized dashboard name when applied.
var DashboardSanitizer = sanitization.NewSanitizer(
	[]sanitization.Rule{
		{
			Pattern:     regexp.MustCompile(`[^\w\-]`),
			Replacement: "_",
		},
	},
	255,
)
