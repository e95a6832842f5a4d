package patient

import "testing"

func TestLikeEscaper(t *testing.T) {
	cases := map[string]string{
		"Rao":      "Rao",
		"50%":      `50\%`,
		"a_b":      `a\_b`,
		`back\one`: `back\\one`,
		`%_\`:      `\%\_\\`,
	}
	for in, want := range cases {
		if got := likeEscaper.Replace(in); got != want {
			t.Errorf("Replace(%q) = %q, want %q", in, got, want)
		}
	}
}
