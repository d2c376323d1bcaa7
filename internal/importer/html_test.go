package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractNameAndImage(t *testing.T) {
	url := func(s string) *string { return &s }

	cases := []struct {
		name     string
		input    string
		wantName string
		wantURL  *string
	}{
		{
			name:     "plain text",
			input:    "Jane Doe",
			wantName: "Jane Doe",
		},
		{
			name:     "empty",
			input:    "",
			wantName: "Unknown",
		},
		{
			name:     "unquoted href",
			input:    `<a target=_blank href=https://x.test/p.png>Jane Doe</a>`,
			wantName: "Jane Doe",
			wantURL:  url("https://x.test/p.png"),
		},
		{
			name:     "double quoted href",
			input:    `<a href="https://x.test/a.jpg">Bob</a>`,
			wantName: "Bob",
			wantURL:  url("https://x.test/a.jpg"),
		},
		{
			name:     "single quoted href",
			input:    `<a href='https://x.test/b.jpg'>Carol</a>`,
			wantName: "Carol",
			wantURL:  url("https://x.test/b.jpg"),
		},
		{
			name:     "anchor without closing tag",
			input:    `<a href="https://x.test/c.png">Dan`,
			wantName: "Dan",
			wantURL:  url("https://x.test/c.png"),
		},
		{
			name:     "markup with no text",
			input:    `<a href="https://x.test/d.png"></a>`,
			wantName: "Unknown",
			wantURL:  url("https://x.test/d.png"),
		},
		{
			name:     "whitespace padding",
			input:    "  Eve  ",
			wantName: "Eve",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			name, imageURL := ExtractNameAndImage(tc.input)
			assert.Equal(t, tc.wantName, name)
			assert.Equal(t, tc.wantURL, imageURL)
		})
	}
}
