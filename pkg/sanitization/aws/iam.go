package aws

import (
	"regexp"

	"github.com/talves/gameservers/pkg/sanitization"
)

// IamRoleSanitizer returns a sanitized role name when applied.
var IamRoleSanitizer = sanitization.NewSanitizer(
	[]sanitization.Rule{
		// replace anything outside of the allowed set with "_"
		{
			Pattern:     regexp.MustCompile(`[^\w+=,.@-]`),
			Replacement: "_",
		},
	}, 64)
