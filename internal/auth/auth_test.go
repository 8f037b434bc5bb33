package auth

import (
	"net/http/httptest"
	"testing"
)

func TestUserID(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
		ok     bool
	}{
		{"present", "u_parent1", "u_parent1", true},
		{"whitespace trimmed", "  u_parent1  ", "u_parent1", true},
		{"missing", "", "", false},
		{"whitespace only", "   ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/payments/status", nil)
			if tt.header != "" {
				r.Header.Set(UserIDHeader, tt.header)
			}
			got, ok := UserID(r)
			if got != tt.want || ok != tt.ok {
				t.Errorf("UserID() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.ok)
			}
		})
	}
}
