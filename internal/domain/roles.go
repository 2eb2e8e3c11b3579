package domain

import "strings"

type Role string

const (
	// RoleUser is the default for every newly created account.
	RoleUser Role = "USER"
	// RoleAdmin may list, re-role and remove other accounts.
	RoleAdmin Role = "ADMIN"
)

func IsValidRole(r string) bool {
	return r == string(RoleUser) || r == string(RoleAdmin)
}

// NormalizeRole applies the input transform for the role field:
// trim + upper-case, whatever the caller supplied. It never rejects;
// enumeration happens in ParseRole.
func NormalizeRole(r string) string {
	return strings.ToUpper(strings.TrimSpace(r))
}

// ParseRole coerces arbitrary input to a stored role. Anything that is
// not ADMIN after normalization falls back to USER, so the directory
// only ever holds the two enumerated values.
func ParseRole(r string) Role {
	if NormalizeRole(r) == string(RoleAdmin) {
		return RoleAdmin
	}
	return RoleUser
}

// RoleRank: bigger => higher privilege.
func RoleRank(r string) int {
	switch NormalizeRole(r) {
	case string(RoleUser):
		return 1
	case string(RoleAdmin):
		return 2
	default:
		return 0
	}
}
