package markdown

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func inline(s string) string {
	r := &renderer{ids: map[string]int{}}
	return r.inline(s)
}

func TestInlineEmphasis(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"**bold**", "<strong>bold</strong>"},
		{"__bold__", "<strong>bold</strong>"},
		{"text **bold** more", "text <strong>bold</strong> more"},
		{"*italic*", "<em>italic</em>"},
		{"_italic_", "<em>italic</em>"},
		{"text *italic* more", "text <em>italic</em> more"},
		{"**bold *italic* text**", "<strong>bold <em>italic</em> text</strong>"},
		{"snake_case_name", "snake_case_name"},
	}
	for _, tt := range tests {
		if got := inline(tt.input); got != tt.expected {
			t.Errorf("inline(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestInlineEscapesHTML(t *testing.T) {
	got := inline(`<script>alert("x")</script>`)
	if strings.Contains(got, "<script>") {
		t.Fatalf("inline did not escape markup: %q", got)
	}
}

func TestInlineLinks(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains string
		absent   string
	}{
		{"relative", "[priser](/sv/pricing)", `<a href="/sv/pricing">priser</a>`, ""},
		{"underscores in url", "[doc](https://example.com/my_long_page)", `href="https://example.com/my_long_page"`, "<em>"},
		{"new tab", "[ext](https://example.com)^", `target="_blank" rel="noopener noreferrer"`, ""},
		{"javascript dropped", "[x](javascript:alert(1))", "x", "<a"},
		{"protocol relative dropped", "[x](//evil.example)", "x", "<a"},
		{"mailto", "[mejla](mailto:hej@example.se)", `href="mailto:hej@example.se"`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := inline(tt.input)
			if !strings.Contains(got, tt.contains) {
				t.Errorf("inline(%q) = %q, want it to contain %q", tt.input, got, tt.contains)
			}
			if tt.absent != "" && strings.Contains(got, tt.absent) {
				t.Errorf("inline(%q) = %q, should not contain %q", tt.input, got, tt.absent)
			}
		})
	}
}

func TestInlineCodeIsNotFormatted(t *testing.T) {
	got := inline("run `go test **./...**` now")
	if !strings.Contains(got, "<code>go test **./...**</code>") {
		t.Fatalf("inline code was formatted: %q", got)
	}
}

func TestInlineImages(t *testing.T) {
	r := &renderer{ids: map[string]int{}}
	first := r.inline("![Omslag](https://cdn.example.com/a.png){1200x630}")
	second := r.inline("![Bild](/assets/b.png)")
	if !strings.Contains(first, `fetchpriority="high"`) || !strings.Contains(first, `width="1200" height="630"`) {
		t.Errorf("first image = %q", first)
	}
	if !strings.Contains(second, `loading="lazy"`) {
		t.Errorf("second image = %q", second)
	}
}

func TestRenderCodeBlock(t *testing.T) {
	got := Render("```go\nfmt.Println(\"<hej>\")\n```")
	if !strings.Contains(got, `<code class="language-go">`) {
		t.Errorf("missing language class: %q", got)
	}
	if !strings.Contains(got, "&lt;hej&gt;") {
		t.Errorf("code not escaped: %q", got)
	}
	if !strings.HasSuffix(got, "</code></pre></div>") {
		t.Errorf("code block not closed: %q", got)
	}

	plain := Render("```\ncode here\n```")
	if !strings.Contains(plain, "<pre><code>code here\n</code></pre>") {
		t.Errorf("plain code block = %q", plain)
	}
}

func TestRenderHeadings(t *testing.T) {
	got := Render("# Välkommen\n## Kom igång\n## Kom igång")
	for _, want := range []string{
		`<h2 id="välkommen">Välkommen</h2>`,
		`<h3 id="kom-igång">Kom igång</h3>`,
		`<h3 id="kom-igång-1">Kom igång</h3>`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Render headings = %q, want %q", got, want)
		}
	}
}

func TestRenderBlocks(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"list", "- one\n- two", "<ul><li>one</li><li>two</li></ul>"},
		{"ordered", "1. one\n2. **two**", "<ol><li>one</li><li><strong>two</strong></li></ol>"},
		{"ordered then para", "1. one\n\nafter", "<ol><li>one</li></ol><p>after</p>"},
		{"paragraph", "line one\nline two", "<p>line one\nline two</p>"},
		{"quote", "> citat\n> mer", "<blockquote>citat mer</blockquote>"},
		{"rule", "a\n\n---\n\nb", "<p>a</p><hr/><p>b</p>"},
		{"table", "| a | b |\n|---|---|\n| 1 | 2 |", "<table><thead><tr><th>a</th><th>b</th></tr></thead><tbody><tr><td>1</td><td>2</td></tr></tbody></table>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Render(tt.input); got != tt.expected {
				t.Errorf("Render(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	if err := Component("Hej **du**").Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	if buf.String() != "<p>Hej <strong>du</strong></p>" {
		t.Errorf("Component = %q", buf.String())
	}
}

func TestPlainText(t *testing.T) {
	md := "# Rubrik\n\nDet här är **viktigt** och [en länk](/sv).\n\n```\nkod\n```\n- punkt"
	if got := PlainText(md, 0); got != "Rubrik Det här är viktigt och en länk. punkt" {
		t.Errorf("PlainText = %q", got)
	}
	if got := PlainText("ett två tre fyra", 9); got != "ett två…" {
		t.Errorf("PlainText truncated = %q", got)
	}
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Kom igång!":       "kom-igång",
		"  Hello, World  ": "hello-world",
		"???":              "section",
	}
	for in, want := range tests {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}
