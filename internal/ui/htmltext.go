package ui

import (
	"fmt"
	"strconv"
	"strings"
)

// HTMLToLines converts Azure DevOps rich-text HTML into plain terminal
// lines wrapped to maxWidth. It understands the subset of HTML the work
// item editor produces: paragraphs, line breaks, bold/italic (dropped),
// nested ordered/unordered lists, links (href appended in parentheses),
// images, and simple tables. Unknown tags are skipped. Consecutive blank
// lines are collapsed.
func HTMLToLines(html string, maxWidth int) []string {
	if maxWidth < 10 {
		maxWidth = 10
	}
	p := &htmlParser{maxWidth: maxWidth}
	p.parse(html)
	p.flushLine()
	return p.lines
}

type listKind int

const (
	listUnordered listKind = iota
	listOrdered
)

type listState struct {
	kind listKind
	item int // last ordered item number
}

type htmlParser struct {
	lines        []string
	current      strings.Builder
	currentWidth int
	lastBlank    bool
	listStack    []listState
	anchorHref   string
	maxWidth     int
}

func (p *htmlParser) parse(html string) {
	i := 0
	for i < len(html) {
		if html[i] == '<' {
			end := strings.IndexByte(html[i:], '>')
			if end < 0 {
				// Unterminated tag; treat the rest as text.
				p.addText(html[i:])
				break
			}
			p.handleTag(html[i+1 : i+end])
			i += end + 1
			continue
		}

		next := strings.IndexByte(html[i:], '<')
		if next < 0 {
			p.addText(html[i:])
			break
		}
		p.addText(html[i : i+next])
		i += next
	}
}

func (p *htmlParser) handleTag(tag string) {
	tag = strings.TrimSpace(tag)
	closing := strings.HasPrefix(tag, "/")
	tag = strings.TrimPrefix(tag, "/")
	tag = strings.TrimSuffix(tag, "/")

	name := tag
	attrs := ""
	if idx := strings.IndexAny(tag, " \t\n"); idx >= 0 {
		name = tag[:idx]
		attrs = tag[idx+1:]
	}
	name = strings.ToLower(name)

	if closing {
		p.handleClose(name)
		return
	}

	switch name {
	case "br":
		p.flushLine()
	case "p", "div", "h1", "h2", "h3", "h4", "h5", "h6", "table", "tbody", "tr":
		if p.current.Len() > 0 {
			p.flushLine()
		}
	case "ul":
		p.flushLine()
		p.listStack = append(p.listStack, listState{kind: listUnordered})
	case "ol":
		p.flushLine()
		p.listStack = append(p.listStack, listState{kind: listOrdered})
	case "li":
		p.flushLine()
		p.current.WriteString(p.indent())
		p.current.WriteString(p.listPrefix())
		p.currentWidth = len(p.indent()) + 2
	case "a":
		p.anchorHref = hrefAttr(attrs)
	case "img":
		p.addText("[image]")
	case "td", "th":
		if p.current.Len() > 0 {
			p.addText(" | ")
		}
	}
}

func (p *htmlParser) handleClose(name string) {
	switch name {
	case "p", "div", "li", "h1", "h2", "h3", "h4", "h5", "h6", "tr":
		p.flushLine()
	case "ul", "ol":
		p.flushLine()
		if len(p.listStack) > 0 {
			p.listStack = p.listStack[:len(p.listStack)-1]
		}
	case "a":
		// Append the target so links survive the terminal.
		if p.anchorHref != "" {
			p.addText(" (" + p.anchorHref + ")")
			p.anchorHref = ""
		}
	}
}

func (p *htmlParser) indent() string {
	return strings.Repeat("  ", len(p.listStack))
}

func (p *htmlParser) listPrefix() string {
	if len(p.listStack) == 0 {
		return "• "
	}
	ls := &p.listStack[len(p.listStack)-1]
	if ls.kind == listOrdered {
		ls.item++
		return fmt.Sprintf("%d. ", ls.item)
	}
	return "• "
}

// addText appends text content, decoding entities and word-wrapping.
func (p *htmlParser) addText(text string) {
	text = decodeEntities(text)
	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.ReplaceAll(text, "\r", "")
	if strings.TrimSpace(text) == "" && p.current.Len() == 0 {
		return
	}

	for _, word := range splitInclusive(text) {
		width := len([]rune(word))
		// currentWidth already includes the indent.
		if p.currentWidth+width > p.maxWidth && p.currentWidth > 0 {
			p.flushLine()
			p.current.WriteString(p.indent())
			p.currentWidth = len(p.indent())
			word = strings.TrimLeft(word, " ")
			width = len([]rune(word))
		}
		p.current.WriteString(word)
		p.currentWidth += width
	}
}

func (p *htmlParser) flushLine() {
	line := strings.TrimRight(p.current.String(), " ")
	p.current.Reset()
	p.currentWidth = 0

	blank := strings.TrimSpace(line) == ""
	if blank {
		// Collapse runs of blank lines; never start with one.
		if !p.lastBlank && len(p.lines) > 0 {
			p.lines = append(p.lines, "")
			p.lastBlank = true
		}
		return
	}
	p.lines = append(p.lines, line)
	p.lastBlank = false
}

// splitInclusive splits text into words, each keeping its trailing space,
// so wrapping never loses separators.
func splitInclusive(text string) []string {
	var words []string
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == ' ' {
			words = append(words, text[start:i+1])
			start = i + 1
		}
	}
	if start < len(text) {
		words = append(words, text[start:])
	}
	return words
}

// hrefAttr pulls the href value out of an anchor tag's attributes.
func hrefAttr(attrs string) string {
	idx := strings.Index(strings.ToLower(attrs), "href=")
	if idx < 0 {
		return ""
	}
	rest := attrs[idx+len("href="):]
	if rest == "" {
		return ""
	}
	if rest[0] == '"' || rest[0] == '\'' {
		quote := rest[0]
		if end := strings.IndexByte(rest[1:], quote); end >= 0 {
			return rest[1 : end+1]
		}
		return rest[1:]
	}
	if end := strings.IndexAny(rest, " \t"); end >= 0 {
		return rest[:end]
	}
	return rest
}

// decodeEntities decodes the HTML entities Azure DevOps actually emits.
func decodeEntities(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}

	replacer := strings.NewReplacer(
		"&nbsp;", " ",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", "\"",
		"&#39;", "'",
		"&apos;", "'",
		"&mdash;", "—",
		"&ndash;", "–",
		"&amp;", "&", // must be last so &amp;lt; stays &lt; ... close enough
	)
	s = replacer.Replace(s)

	// Numeric entities: &#123; and &#x1F41E;
	for {
		start := strings.Index(s, "&#")
		if start < 0 {
			break
		}
		end := strings.IndexByte(s[start:], ';')
		if end < 0 {
			break
		}
		entity := s[start+2 : start+end]
		var code int64
		var err error
		if strings.HasPrefix(entity, "x") || strings.HasPrefix(entity, "X") {
			code, err = strconv.ParseInt(entity[1:], 16, 32)
		} else {
			code, err = strconv.ParseInt(entity, 10, 32)
		}
		if err != nil {
			// Leave it as-is, minus the ampersand, to guarantee progress.
			s = s[:start] + s[start+1:]
			continue
		}
		s = s[:start] + string(rune(code)) + s[start+end+1:]
	}
	return s
}
