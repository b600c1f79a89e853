// Package markdown renders blog post bodies. It supports the subset of
// Markdown the editors use: headings, paragraphs, lists, quotes, fenced code,
// tables, rules, links, images and inline emphasis. Everything else is
// escaped and shown as text.
package markdown

import (
	"bytes"
	"context"
	"html"
	"io"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/a-h/templ"
)

var (
	reStrong     = regexp.MustCompile(`(\*\*|__)(.+?)(\*\*|__)`)
	reEmphasis   = regexp.MustCompile(`\*([^*]+)\*|\b_([^_]+)_\b`)
	reCode       = regexp.MustCompile("`([^`]+)`")
	reLink       = regexp.MustCompile(`\[(.*?)\]\((.*?)\)(\^)?`)
	reImage      = regexp.MustCompile(`!\[(.*?)\]\((.*?)\)(?:\{(\d+)x(\d+)\})?`)
	reOrdered    = regexp.MustCompile(`^\d+\.\s`)
	reHeading    = regexp.MustCompile(`^(#{1,4})\s+(.*)$`)
	rePlainNoise = regexp.MustCompile("[*_`#>|]+")
)

type block int

const (
	blockNone block = iota
	blockPara
	blockList
	blockOrdered
	blockQuote
	blockTable
	blockCode
)

// renderer holds the state of one Render call.
type renderer struct {
	out       bytes.Buffer
	open      block
	tableBody bool
	codeLang  bool
	images    int
	ids       map[string]int
}

// Component returns a templ.Component that renders md.
func Component(md string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, Render(md))
		return err
	})
}

// Render converts md to HTML.
func Render(md string) string {
	r := &renderer{ids: make(map[string]int)}
	for _, raw := range strings.Split(md, "\n") {
		r.line(strings.TrimRight(raw, "\r"))
	}
	r.close()
	return r.out.String()
}

func (r *renderer) close() {
	switch r.open {
	case blockPara:
		r.out.WriteString("</p>")
	case blockList:
		r.out.WriteString("</ul>")
	case blockOrdered:
		r.out.WriteString("</ol>")
	case blockQuote:
		r.out.WriteString("</blockquote>")
	case blockTable:
		if r.tableBody {
			r.out.WriteString("</tbody>")
		}
		r.out.WriteString("</table>")
		r.tableBody = false
	case blockCode:
		r.out.WriteString("</code></pre>")
		if r.codeLang {
			r.out.WriteString("</div>")
			r.codeLang = false
		}
	}
	r.open = blockNone
}

// enter closes the current block unless it is already b, and reports whether
// a new block was opened.
func (r *renderer) enter(b block) bool {
	if r.open == b {
		return false
	}
	r.close()
	r.open = b
	return true
}

func (r *renderer) line(line string) {
	if strings.HasPrefix(line, "```") {
		if r.open == blockCode {
			r.close()
			return
		}
		r.close()
		r.open = blockCode
		if lang := html.EscapeString(strings.TrimSpace(line[3:])); lang != "" {
			r.codeLang = true
			r.out.WriteString(`<div class="code-block"><span class="code-lang">` + lang + `</span>`)
			r.out.WriteString(`<pre><code class="language-` + lang + `">`)
		} else {
			r.out.WriteString("<pre><code>")
		}
		return
	}
	if r.open == blockCode {
		r.out.WriteString(html.EscapeString(line))
		r.out.WriteByte('\n')
		return
	}

	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "":
		r.close()
	case strings.HasPrefix(trimmed, "---"):
		r.close()
		r.out.WriteString("<hr/>")
	case reHeading.MatchString(trimmed):
		r.close()
		m := reHeading.FindStringSubmatch(trimmed)
		r.heading(len(m[1]), m[2])
	case strings.HasPrefix(trimmed, "|"):
		r.tableRow(trimmed)
	case strings.HasPrefix(trimmed, "- "), strings.HasPrefix(trimmed, "* "):
		if r.enter(blockList) {
			r.out.WriteString("<ul>")
		}
		r.out.WriteString("<li>" + r.inline(trimmed[2:]) + "</li>")
	case reOrdered.MatchString(trimmed):
		if r.enter(blockOrdered) {
			r.out.WriteString("<ol>")
		}
		r.out.WriteString("<li>" + r.inline(reOrdered.ReplaceAllString(trimmed, "")) + "</li>")
	case strings.HasPrefix(trimmed, ">"):
		if r.enter(blockQuote) {
			r.out.WriteString("<blockquote>")
		} else {
			r.out.WriteByte(' ')
		}
		r.out.WriteString(r.inline(strings.TrimSpace(trimmed[1:])))
	default:
		if r.enter(blockPara) {
			r.out.WriteString("<p>")
		} else {
			r.out.WriteByte('\n')
		}
		r.out.WriteString(r.inline(trimmed))
	}
}

// heading writes an h2..h5: the page title is the only h1.
func (r *renderer) heading(level int, text string) {
	tag := "h" + strconv.Itoa(level+1)
	id := Slugify(text)
	if n := r.ids[id]; n > 0 {
		r.ids[id] = n + 1
		id += "-" + strconv.Itoa(n)
	} else {
		r.ids[id] = 1
	}
	r.out.WriteString("<" + tag + ` id="` + id + `">` + r.inline(text) + "</" + tag + ">")
}

func (r *renderer) tableRow(line string) {
	cells := splitCells(line)
	if r.enter(blockTable) {
		r.out.WriteString("<table><thead><tr>")
		for _, c := range cells {
			r.out.WriteString("<th>" + r.inline(c) + "</th>")
		}
		r.out.WriteString("</tr></thead>")
		return
	}
	if !r.tableBody {
		r.out.WriteString("<tbody>")
		r.tableBody = true
	}
	if isSeparator(cells) {
		return
	}
	r.out.WriteString("<tr>")
	for _, c := range cells {
		r.out.WriteString("<td>" + r.inline(c) + "</td>")
	}
	r.out.WriteString("</tr>")
}

func splitCells(line string) []string {
	parts := strings.Split(strings.Trim(line, "|"), "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func isSeparator(cells []string) bool {
	for _, c := range cells {
		if strings.Trim(c, "-: ") != "" {
			return false
		}
	}
	return true
}

// inline escapes s and applies images, links, code spans and emphasis.
func (r *renderer) inline(s string) string {
	s = html.EscapeString(s)

	// Code spans are swapped for placeholders so nothing inside them is
	// formatted.
	var spans []string
	s = reCode.ReplaceAllStringFunc(s, func(m string) string {
		spans = append(spans, "<code>"+reCode.FindStringSubmatch(m)[1]+"</code>")
		return "\x00" + strconv.Itoa(len(spans)-1) + "\x00"
	})

	s = reImage.ReplaceAllStringFunc(s, func(m string) string {
		match := reImage.FindStringSubmatch(m)
		src := SafeURL(match[2])
		if src == "" {
			return match[1]
		}
		r.images++
		loading := `loading="lazy"`
		if r.images == 1 {
			loading = `fetchpriority="high"`
		}
		size := ""
		if match[3] != "" {
			size = ` width="` + match[3] + `" height="` + match[4] + `"`
		}
		return `<img src="` + src + `" alt="` + match[1] + `"` + size + ` ` + loading + ` decoding="async"/>`
	})
	s = reLink.ReplaceAllStringFunc(s, func(m string) string {
		match := reLink.FindStringSubmatch(m)
		href := SafeURL(match[2])
		if href == "" {
			return match[1]
		}
		attrs := ""
		if match[3] == "^" {
			attrs = ` target="_blank" rel="noopener noreferrer"`
		}
		return `<a href="` + href + `"` + attrs + `>` + match[1] + `</a>`
	})

	s = outsideTags(s, func(seg string) string {
		seg = reStrong.ReplaceAllString(seg, "<strong>$2</strong>")
		return reEmphasis.ReplaceAllStringFunc(seg, func(m string) string {
			sub := reEmphasis.FindStringSubmatch(m)
			return "<em>" + sub[1] + sub[2] + "</em>"
		})
	})

	for i, span := range spans {
		s = strings.Replace(s, "\x00"+strconv.Itoa(i)+"\x00", span, 1)
	}
	return s
}

// outsideTags applies fn to the text between HTML tags only, so attribute
// values such as URLs are never formatted.
func outsideTags(s string, fn func(string) string) string {
	var b strings.Builder
	for s != "" {
		lt := strings.IndexByte(s, '<')
		if lt < 0 {
			b.WriteString(fn(s))
			break
		}
		b.WriteString(fn(s[:lt]))
		gt := strings.IndexByte(s[lt:], '>')
		if gt < 0 {
			b.WriteString(s[lt:])
			break
		}
		b.WriteString(s[lt : lt+gt+1])
		s = s[lt+gt+1:]
	}
	return b.String()
}

// SafeURL returns raw escaped for an HTML attribute, or "" when it is not a
// relative, fragment, http(s), mailto or tel URL.
func SafeURL(raw string) string {
	val := strings.TrimSpace(html.UnescapeString(raw))
	if val == "" {
		return ""
	}
	if strings.HasPrefix(val, "/") || strings.HasPrefix(val, "#") {
		if strings.HasPrefix(val, "//") {
			return ""
		}
		return html.EscapeString(val)
	}
	u, err := url.Parse(val)
	if err != nil {
		return ""
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "mailto", "tel":
		return html.EscapeString(val)
	}
	return ""
}

// Slugify turns a heading into an anchor id. Letters outside ASCII, such as
// å, ä and ö, are kept.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, c := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(c) || unicode.IsDigit(c):
			b.WriteRune(c)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "section"
	}
	return out
}

// PlainText strips markup from md and cuts it to at most max runes on a word
// boundary, for meta descriptions and feed summaries.
func PlainText(md string, max int) string {
	var words []string
	inCode := false
	for _, line := range strings.Split(md, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inCode = !inCode
			continue
		}
		if inCode {
			continue
		}
		line = strings.TrimLeft(strings.TrimSpace(line), "-+ ")
		line = reImage.ReplaceAllString(line, "")
		line = reLink.ReplaceAllString(line, "$1")
		line = rePlainNoise.ReplaceAllString(line, "")
		words = append(words, strings.Fields(line)...)
	}
	text := strings.Join(words, " ")
	runes := []rune(text)
	if max <= 0 || len(runes) <= max {
		return text
	}
	cut := string(runes[:max])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, ",.;:") + "…"
}
