package catalog

import "testing"

func TestIsISBN(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"9787544270878", true},
		{"978-7-5442-7087-8", true},
		{" 7544270870 ", true},
		{"754427087X", true},
		{"754427087x", true},
		{"75442708X7", false},
		{"978754427087X", false},
		{"解忧杂货店", false},
		{"1984", true},
		{"", false},
		{"   ", false},
	}
	for _, tt := range tests {
		if got := IsISBN(tt.in); got != tt.want {
			t.Errorf("IsISBN(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCleanISBN(t *testing.T) {
	if got := CleanISBN(" 978-7-5442 7087-8 "); got != "9787544270878" {
		t.Errorf("CleanISBN = %q", got)
	}
}
