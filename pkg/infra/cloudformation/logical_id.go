package cloudformation

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/talves/gameservers/pkg/construct"
)

const (
	maxLogicalIdLength  = 255
	logicalIdHashLength = 8
)

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// LogicalId is the template key of the resource: every part of the construct path camel-cased and joined, plus
// a hash of the type and full path so that paths only differing in punctuation still get different ids.
func LogicalId(id construct.ResourceId) string {
	var human strings.Builder
	for _, part := range strings.Split(id.Name, "/") {
		part = nonAlphanumeric.ReplaceAllString(part, " ")
		human.WriteString(nonAlphanumeric.ReplaceAllString(strcase.ToCamel(part), ""))
	}
	prefix := human.String()
	if limit := maxLogicalIdLength - logicalIdHashLength; len(prefix) > limit {
		prefix = prefix[:limit]
	}
	sum := sha256.Sum256([]byte(id.QualifiedTypeName() + "/" + id.Name))
	return prefix + strings.ToUpper(hex.EncodeToString(sum[:])[:logicalIdHashLength])
}

// OutputId is the template key of a named output.
func OutputId(name string) string {
	return nonAlphanumeric.ReplaceAllString(strcase.ToCamel(nonAlphanumeric.ReplaceAllString(name, " ")), "")
}
