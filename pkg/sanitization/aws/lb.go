package aws

import (
	"regexp"

	"github.com/talves/gameservers/pkg/sanitization"
)

var elbNameRules = []sanitization.Rule{
	{
		Pattern:     regexp.MustCompile(`[^a-zA-Z\d-]`),
		Replacement: "-",
	},
	{
		Pattern:     regexp.MustCompile(`^internal-`),
		Replacement: "",
	},
	{
		Pattern:     regexp.MustCompile(`^-+`),
		Replacement: "",
	},
	{
		Pattern:     regexp.MustCompile(`-+$`),
		Replacement: "",
	},
}

// LoadBalancerSanitizer returns a sanitized load balancer name when applied.
var LoadBalancerSanitizer = sanitization.NewSanitizer(elbNameRules, 32)

// TargetGroupSanitizer returns a sanitized target group name when applied.
var TargetGroupSanitizer = sanitization.NewSanitizer(elbNameRules, 32)
