package analysis

import (
	"strings"
	"testing"
)

func TestNormalizeBasics(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Hello, World!", "hello world"},
		{"  nhiều   khoảng  trắng  ", "nhiều khoảng trắng"},
		{"Rủi ro TÍN DỤNG.", "rủi ro tín dụng"},
		{"...!!!", ""},
		{"", ""},
		{"abc123 -- def", "abc123 def"},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Hello, World! How are you?",
		"Ngân hàng thương mại... rủi ro tín dụng!",
		"   mixed \t whitespace\nand CASE  ",
		"",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestStripBibliographyPicksLateMarker(t *testing.T) {
	// Marker appears early (~10%) and late (~80%); only the late one
	// qualifies and wins.
	body := strings.Repeat("nội dung chính của bài luận về tín dụng. ", 20)
	early := "tài liệu tham khảo nhắc đến trong phần mở đầu. "
	text := body[:len(body)/10] + early + body + "Tài liệu tham khảo\n[1] Nguyễn Văn A (2020)."

	got := StripBibliography(text)
	if strings.Contains(strings.ToLower(got), "[1] nguyễn văn a") {
		t.Fatalf("trailing bibliography not stripped")
	}
	if !strings.Contains(strings.ToLower(got), "nhắc đến trong phần mở đầu") {
		t.Fatalf("early mention should survive, got truncated at the wrong marker")
	}
}

func TestStripBibliographyNoQualifyingMarker(t *testing.T) {
	// Marker only in the first 70% of the text: untouched.
	text := "tài liệu tham khảo được bàn ở đây. " + strings.Repeat("phần thân bài dài. ", 30)
	if got := StripBibliography(text); got != text {
		t.Fatalf("early-only marker must not truncate")
	}
	if got := StripBibliography(""); got != "" {
		t.Fatalf("empty input changed: %q", got)
	}
}
