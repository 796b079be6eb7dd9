package contact

import (
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "simple lowercase", input: "Minsu Kim", want: "minsu kim"},
		{name: "trim whitespace", input: "  kim  ", want: "kim"},
		{name: "collapse internal whitespace", input: "Minsu    Kim", want: "minsu kim"},
		{name: "tabs and newlines", input: "Minsu\t\n  Kim", want: "minsu kim"},
		{name: "non-latin", input: " 김민수 ", want: "김민수"},
		{name: "empty string", input: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestToSummary(t *testing.T) {
	uid := "urn:uuid:1"
	c := &Contact{
		ID:          "01JABC",
		PersonID:    "01JPER",
		DisplayName: "Minsu Kim",
		DisplayNorm: "minsu kim",
		UID:         &uid,
		Record:      &Record{DisplayName: "Minsu Kim"},
		CreatedAt:   100,
		UpdatedAt:   200,
	}

	s := c.ToSummary()
	if s.ID != c.ID || s.PersonID != c.PersonID || s.DisplayName != c.DisplayName {
		t.Errorf("ToSummary() = %+v, identity fields not copied", s)
	}
	if s.UID != c.UID {
		t.Errorf("ToSummary().UID = %v, want %v", s.UID, c.UID)
	}
	if s.CreatedAt != 100 || s.UpdatedAt != 200 {
		t.Errorf("ToSummary() timestamps = %d/%d, want 100/200", s.CreatedAt, s.UpdatedAt)
	}
}
