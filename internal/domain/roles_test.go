package domain

import "testing"

func TestNormalizeRole_UpperCasesAnyInput(t *testing.T) {
	cases := map[string]string{
		"admin":      "ADMIN",
		"Admin":      "ADMIN",
		" user ":     "USER",
		"uSeR":       "USER",
		"moderator":  "MODERATOR",
		"":           "",
		"  weird  x": "WEIRD  X",
	}
	for in, want := range cases {
		if got := NormalizeRole(in); got != want {
			t.Fatalf("NormalizeRole(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseRole_AlwaysEnumerated(t *testing.T) {
	inputs := []string{"admin", "ADMIN", "user", "USER", "", "moderator", "root", "AdMiN", "42"}
	for _, in := range inputs {
		got := ParseRole(in)
		if got != RoleUser && got != RoleAdmin {
			t.Fatalf("ParseRole(%q) = %q, not an enumerated role", in, got)
		}
	}

	if ParseRole("aDmIn") != RoleAdmin {
		t.Fatalf("expected mixed-case admin to parse as ADMIN")
	}
	if ParseRole("superuser") != RoleUser {
		t.Fatalf("expected unknown role to default to USER")
	}
}

func TestRoleRank(t *testing.T) {
	if RoleRank("ADMIN") <= RoleRank("USER") {
		t.Fatalf("admin must outrank user")
	}
	if RoleRank("admin") != RoleRank("ADMIN") {
		t.Fatalf("rank must be case-insensitive")
	}
	if RoleRank("moderator") != 0 {
		t.Fatalf("unknown role must rank 0")
	}
}

func TestIsValidRole(t *testing.T) {
	if !IsValidRole("USER") || !IsValidRole("ADMIN") {
		t.Fatalf("enumerated values must be valid")
	}
	if IsValidRole("user") || IsValidRole("") || IsValidRole("MOD") {
		t.Fatalf("only upper-case enumerated values are valid")
	}
}
