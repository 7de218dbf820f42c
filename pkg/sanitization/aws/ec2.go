package aws

import (
	"regexp"

	"github.com/talves/gameservers/pkg/sanitization"
)

// SecurityGroupSanitizer returns a sanitized security group name when applied.
// Group names may hold spaces, they are shown as-is in the console (`Minecraft EFS`).
var SecurityGroupSanitizer = sanitization.NewSanitizer(
	[]sanitization.Rule{
		{
			Pattern:     regexp.MustCompile(`[^a-zA-Z0-9 ._\-:/()#,@\[\]+=&;{}!$*]`),
			Replacement: "",
		},
		{
			Pattern:     regexp.MustCompile(`^(?i)sg-`),
			Replacement: "",
		},
	},
	255,
)
