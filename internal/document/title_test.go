package document

import (
	"strings"
	"testing"
)

func TestExtractTitle(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{
			name: "line with terminal punctuation",
			text: "An Introduction to Distributed Consensus.\n\nChapter one begins here with a long paragraph of content.",
			want: "An Introduction to Distributed Consensus.",
		},
		{
			name: "short first line without punctuation",
			text: "Quarterly Engineering Review\n\nThis document summarizes the quarter.",
			want: "Quarterly Engineering Review",
		},
		{
			name: "metadata lines are skipped",
			text: "Page 1 of 12\nDate: 2024-01-01\nCopyright 2024 Acme Corp\nOperating Manual\nSome body text follows here.",
			want: "Some body text follows here.",
		},
		{
			name: "copyright symbol is metadata",
			text: "© 2023 Example Inc\nRelease Notes\nbody",
			want: "Release Notes",
		},
		{
			name: "very long lines are skipped, sentence fallback",
			text: strings.Repeat("x", 250) + "\n" + strings.Repeat("y", 220) + "\nzz\nqq\nww\nThe system overview. More text follows",
			want: "",
		},
		{
			name: "long punctuated line under 150 chars still wins",
			text: "this starter line stretches well past one hundred characters so it cannot be used as a short heading title.\nSecond sentence.",
			want: "this starter line stretches well past one hundred characters so it cannot be used as a short heading title.",
		},
		{
			name: "empty input",
			text: "   \n \n",
			want: "",
		},
		{
			name: "too short lines ignored",
			text: "a\nb\nc\nd\ne\nf",
			want: "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractTitle(tc.text)
			if got != tc.want {
				t.Errorf("ExtractTitle(%q) = %q, want %q", tc.text, got, tc.want)
			}
		})
	}
}

func TestExtractTitle_FirstSentenceFallback(t *testing.T) {
	// Every line fails the line checks (all metadata-like), but the first
	// sentence is title-sized.
	text := "copyright page one\ncopyright page two\ncopyright page three.\nmore copyright\npage again\nanother copyright line"
	got := ExtractTitle(text)
	want := "copyright page one\ncopyright page two\ncopyright page three"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExtractTitle_Deterministic(t *testing.T) {
	text := "A Study of Caching Strategies.\nBody follows."
	first := ExtractTitle(text)
	for i := 0; i < 3; i++ {
		if got := ExtractTitle(text); got != first {
			t.Fatalf("non-deterministic: %q then %q", first, got)
		}
	}
}

func TestFilenameStem(t *testing.T) {
	cases := map[string]string{
		"/tmp/report.pdf":     "report",
		"notes.md":            "notes",
		"/a/b/archive.tar.gz": "archive.tar",
		"noext":               "noext",
	}
	for in, want := range cases {
		if got := FilenameStem(in); got != want {
			t.Errorf("FilenameStem(%q) = %q, want %q", in, got, want)
		}
	}
}
