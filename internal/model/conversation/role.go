package conversation

import "fmt"

// MessageRole is the author of a message.
// System prompts are supplied by the AI adapter and never stored, so the set is closed at two.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// ParseMessageRole converts a stored role string, rejecting anything outside the closed set.
func ParseMessageRole(s string) (MessageRole, error) {
	switch MessageRole(s) {
	case RoleUser, RoleAssistant:
		return MessageRole(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
}

// IsValid reports whether r is a known role.
func (r MessageRole) IsValid() bool {
	return r == RoleUser || r == RoleAssistant
}

// String returns the role literal.
func (r MessageRole) String() string {
	return string(r)
}
