package email

import (
	"strings"
	"testing"
)

var testIdentity = Identity{
	SiteName: "Acme Inc",
	Address:  "123 Market St, San Francisco, CA",
}

func TestRenderVerifyEmail(t *testing.T) {
	t.Parallel()

	out, err := renderVerifyEmail(testIdentity, "Jane", "https://app.test/verify-email?token=abc")
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	for _, want := range []string{
		"Hi Jane,",
		`href="https://app.test/verify-email?token=abc"`,
		"Verify email",
		"Acme Inc",
		"123 Market St, San Francisco, CA",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in rendered mail:\n%s", want, out)
		}
	}
}

func TestRenderVerifyEmail_EscapesName(t *testing.T) {
	t.Parallel()

	out, err := renderVerifyEmail(testIdentity, `<script>alert(1)</script>`, "https://app.test/v?token=t")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(out, "<script>") {
		t.Fatalf("user name must be escaped:\n%s", out)
	}
}

func TestRenderResetEmail(t *testing.T) {
	t.Parallel()

	out, err := renderResetEmail(testIdentity, "https://app.test/reset-password?token=xyz")
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	for _, want := range []string{
		`href="https://app.test/reset-password?token=xyz"`,
		"Reset password",
		"Acme Inc",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in rendered mail:\n%s", want, out)
		}
	}
	// Reset mail carries no greeting; the link is the contract.
	if strings.Contains(out, "Hi ") {
		t.Fatalf("reset mail must not include a personal greeting:\n%s", out)
	}
}
