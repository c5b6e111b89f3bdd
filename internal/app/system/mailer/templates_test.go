package mailer

import (
	"strings"
	"testing"
)

func TestBuildInvitationEmail_SanitizesNames(t *testing.T) {
	e := BuildInvitationEmail(InvitationEmailData{
		SiteName:    "MinuteHub",
		GroupName:   `Design <script>alert("x")</script> Team`,
		InviterName: "Alice <b>Admin</b>",
		AcceptURL:   "https://minutehub.app/invitations",
		JoinCode:    "K7MXQ2",
	})

	if strings.Contains(e.HTMLBody, "<script>") {
		t.Error("HTML body should not contain script tags from the group name")
	}
	if strings.Contains(e.HTMLBody, "<b>Admin</b>") {
		t.Error("HTML body should not contain markup from the inviter name")
	}
	if !strings.Contains(e.HTMLBody, "Design") {
		t.Error("HTML body should keep the text content of the group name")
	}
	if !strings.Contains(e.TextBody, "K7MXQ2") || !strings.Contains(e.HTMLBody, "K7MXQ2") {
		t.Error("both bodies should carry the join code")
	}
}

func TestBuildVerificationEmail_IncludesCodeAndLink(t *testing.T) {
	e := BuildVerificationEmail(VerificationEmailData{
		SiteName:  "MinuteHub",
		Code:      "482913",
		MagicLink: "https://minutehub.app/auth/magic?token=abc",
		ExpiresIn: "10 minutes",
	})

	if !strings.Contains(e.TextBody, "482913") {
		t.Error("text body should contain the code")
	}
	if !strings.Contains(e.HTMLBody, "482913") {
		t.Error("HTML body should contain the code")
	}
	if !strings.Contains(e.TextBody, "magic?token=abc") {
		t.Error("text body should contain the magic link")
	}
	if e.Subject == "" {
		t.Error("subject should not be empty")
	}
}

func TestEnvelopeFrom(t *testing.T) {
	tests := []struct {
		from string
		want string
	}{
		{"no-reply@minutehub.app", "no-reply@minutehub.app"},
		{"MinuteHub <no-reply@minutehub.app>", "no-reply@minutehub.app"},
	}
	for _, tt := range tests {
		if got := envelopeFrom(tt.from); got != tt.want {
			t.Errorf("envelopeFrom(%q) = %q, want %q", tt.from, got, tt.want)
		}
	}
}
