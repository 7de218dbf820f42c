package aws

import (
	"regexp"

	"github.com/talves/gameservers/pkg/sanitization"
)

var ecsNameRules = []sanitization.Rule{
	// strip any characters not matching [a-zA-Z0-9-_]
	{
		Pattern:     regexp.MustCompile(`[^\w-]+`),
		Replacement: "",
	},
}

// EcsTaskDefinitionSanitizer returns a sanitized ECS TaskDefinition family when applied.
var EcsTaskDefinitionSanitizer = sanitization.NewSanitizer(ecsNameRules, 255)

// EcsClusterSanitizer returns a sanitized ECS Cluster name when applied.
var EcsClusterSanitizer = sanitization.NewSanitizer(ecsNameRules, 255)

// EcsServiceSanitizer returns a sanitized ECS Service name when applied.
var EcsServiceSanitizer = sanitization.NewSanitizer(ecsNameRules, 255)
