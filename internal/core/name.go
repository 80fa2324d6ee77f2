package core

import (
	"fmt"
	"regexp"
)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidateWorkspaceName reports whether name may be sent to the backend.
// An empty name is allowed: the backend picks one.
func ValidateWorkspaceName(name string) error {
	if name == "" {
		return nil
	}
	if !namePattern.MatchString(name) {
		return NewAppError(ErrValidation, "Workspace name can only contain letters, numbers, dashes, and underscores")
	}
	return nil
}

func ValidateServiceName(service string) error {
	if service == "" {
		return NewAppError(ErrValidation, "Please select a service")
	}
	return nil
}

// DefaultWorkspaceName builds the name used when the user supplies none.
func DefaultWorkspaceName(service string) string {
	return fmt.Sprintf("%s-%s", service, ShortID())
}
