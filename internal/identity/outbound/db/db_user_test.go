package db

import (
	"regexp"
	"testing"
)

func TestUserSearchRegexEscapesMetacharacters(t *testing.T) {
	tests := []struct {
		term    string
		match   string
		noMatch string
	}{
		{"a(b", "xa(by", "ab"},
		{".*", "mail.*name", "painter"},
		{"painter", "PAINTER@example.com", "sculptor"},
	}
	for _, tc := range tests {
		re := userSearchRegex(tc.term)
		compiled, err := regexp.Compile("(?i)" + re.Pattern)
		if err != nil {
			t.Fatalf("pattern for %q does not compile: %v", tc.term, err)
		}
		if !compiled.MatchString(tc.match) {
			t.Errorf("pattern for %q should match %q", tc.term, tc.match)
		}
		if compiled.MatchString(tc.noMatch) {
			t.Errorf("pattern for %q should not match %q", tc.term, tc.noMatch)
		}
	}
}

func TestUserSortFieldAllowlist(t *testing.T) {
	tests := map[string]string{
		"":           "created_at",
		"created_at": "created_at",
		"username":   "username",
		"email":      "email",
		"password":   "created_at",
		"$natural":   "created_at",
	}
	for in, want := range tests {
		if got := userSortField(in); got != want {
			t.Errorf("userSortField(%q) = %q, want %q", in, got, want)
		}
	}
}
