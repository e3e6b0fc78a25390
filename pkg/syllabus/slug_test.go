package syllabus

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Tema 1: La Constitución Española", "tema-1-la-constitucion-espanola"},
		{"  --Derechos   y deberes--  ", "derechos-y-deberes"},
		{"Ley Orgánica 4/2015", "ley-organica-4-2015"},
		{"ÑANDÚ", "nandu"},
		{"already-a-slug", "already-a-slug"},
		{"!!!", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Slugify(tt.in); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
