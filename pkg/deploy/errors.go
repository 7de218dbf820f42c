package deploy

import (
	"errors"
	"strings"

	"github.com/aws/smithy-go"
)

// errorCode is the API error code of `err`, or "" when it is not an AWS API error.
func errorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

func errorMessage(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorMessage()
	}
	return ""
}

// isStackMissing reports whether CloudFormation rejected the call because the stack does not exist.
func isStackMissing(err error) bool {
	return errorCode(err) == "ValidationError" && strings.Contains(errorMessage(err), "does not exist")
}

// isNotFound reports whether S3 answered 404 for a bucket or object.
func isNotFound(err error) bool {
	switch errorCode(err) {
	case "NotFound", "NoSuchKey", "NoSuchBucket":
		return true
	}
	return false
}

// isNoChanges reports whether a failed change set only failed for being empty.
func isNoChanges(reason string) bool {
	return strings.Contains(reason, "didn't contain changes") ||
		strings.Contains(reason, "No updates are to be performed")
}
