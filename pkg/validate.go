package pkg

const (
	// Tokens are opaque capabilities supplied by the client generator.
	// Anything inside these bounds is accepted as-is.
	MinTokenLength = 16
	MaxTokenLength = 64
)

// ValidRole reports whether role is one of the two recognized roles.
func ValidRole(role Role) bool {
	return role == RoleSender || role == RoleReceiver
}

// ValidToken reports whether token has an acceptable shape. It says nothing
// about whether the token matches any room.
func ValidToken(token string) bool {
	return len(token) >= MinTokenLength && len(token) <= MaxTokenLength
}
