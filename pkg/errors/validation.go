package errors

import (
	"strings"
	"unicode"
)

// maxNameLength bounds port and node names.
const maxNameLength = 128

// ValidatePortName validates a port name for use as a lookup key.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No dots (the scene format uses "node.port" addressing)
//   - Maximum length of 128 characters
func ValidatePortName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPortName, "port name cannot be empty")
	}
	if len(name) > maxNameLength {
		return New(ErrCodeInvalidPortName, "port name too long (max %d characters)", maxNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPortName, "port name contains invalid control characters")
		}
	}
	if strings.Contains(name, ".") {
		return New(ErrCodeInvalidPortName, "port name cannot contain '.': %q", name)
	}
	return nil
}

// ValidateNodeName validates a scene-level node name. Node names follow the
// same rules as port names and additionally reject whitespace.
func ValidateNodeName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidScene, "node name cannot be empty")
	}
	if len(name) > maxNameLength {
		return New(ErrCodeInvalidScene, "node name too long (max %d characters)", maxNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidScene, "node name contains whitespace or control characters: %q", name)
		}
	}
	if strings.Contains(name, ".") {
		return New(ErrCodeInvalidScene, "node name cannot contain '.': %q", name)
	}
	return nil
}

// ValidatePath validates a file path given on the command line or in an API
// request for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}
	return nil
}
