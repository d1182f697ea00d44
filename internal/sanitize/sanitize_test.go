package sanitize

import "testing"

func TestURIToID(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"http://x/y/Foo", "Foo"},
		{"http://purl.obolibrary.org/obo/GO_0008150", "GO_0008150"},
		{"urn:thing", "urn:thing"},
		{"http://x/y/", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := URIToID(tt.uri); got != tt.want {
			t.Errorf("URIToID(%q) = %q, want %q", tt.uri, got, tt.want)
		}
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"trailing", "Bird  \n\t", "Bird"},
		{"controls", "a\tb\nc\rd", "a b c d"},
		{"crlf", "a\r\nb", "a  b"},
		{"leading kept", "  x", "  x"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanText(tt.in); got != tt.want {
				t.Errorf("CleanText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEscapeMarkup_Once(t *testing.T) {
	if got := EscapeMarkup("<b>"); got != "&lt;b&gt;" {
		t.Errorf("expected &lt;b&gt;, got %s", got)
	}
	if got := EscapeMarkup("R&D"); got != "R&amp;D" {
		t.Errorf("expected R&amp;D, got %s", got)
	}
	if got := EscapeMarkup(`say "hi"`); got != `say "hi"` {
		t.Errorf("quotes should pass through element text, got %s", got)
	}
}

func TestEscapeAttr(t *testing.T) {
	if got := EscapeAttr(`a"b&c`); got != "a&quot;b&amp;c" {
		t.Errorf("unexpected attr escape: %s", got)
	}
}

func TestText(t *testing.T) {
	if got := Text("<i>Aves</i>\n"); got != "&lt;i&gt;Aves&lt;/i&gt;" {
		t.Errorf("unexpected text: %s", got)
	}
}

func TestUnescapeMarkup_RoundTrip(t *testing.T) {
	for _, in := range []string{"a < b", "R&D", "&amp; literal", "<x>&lt;</x>"} {
		if got := UnescapeMarkup(EscapeMarkup(in)); got != in {
			t.Errorf("UnescapeMarkup(EscapeMarkup(%q)) = %q", in, got)
		}
	}
}
