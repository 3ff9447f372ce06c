package ui

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	markdownBold = regexp.MustCompile(`\*\*(.+?)\*\*`)
	blankRuns    = regexp.MustCompile(`\n{3,}`)
)

// Sanitize turns assistant text into plain terminal text. Markup is never
// interpreted beyond a small subset: br, p, div and li become line breaks,
// b, strong and **x** are passed to bold. Every other tag is dropped with its
// text kept, script and style bodies are dropped entirely, and control
// characters are stripped so replies cannot drive the terminal.
func Sanitize(s string, bold func(string) string) string {
	if bold == nil {
		bold = func(s string) string { return s }
	}

	var b strings.Builder
	boldDepth := 0
	skipDepth := 0

	newline := func() {
		if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
			b.WriteString("\n")
		}
	}

	writeText := func(text string) {
		text = stripControl(text)
		if text == "" {
			return
		}
		if boldDepth > 0 {
			b.WriteString(bold(text))
			return
		}
		last := 0
		for _, m := range markdownBold.FindAllStringSubmatchIndex(text, -1) {
			b.WriteString(text[last:m[0]])
			b.WriteString(bold(text[m[2]:m[3]]))
			last = m[1]
		}
		b.WriteString(text[last:])
	}

	z := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			// io.EOF once the input is consumed; a string reader has no other errors.
			break
		}

		tok := z.Token()
		switch tt {
		case html.TextToken:
			if skipDepth == 0 {
				writeText(tok.Data)
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			switch tok.DataAtom {
			case atom.Script, atom.Style:
				if tt == html.StartTagToken {
					skipDepth++
				}
			case atom.Br:
				b.WriteString("\n")
			case atom.P, atom.Div:
				newline()
			case atom.Li:
				newline()
				b.WriteString("• ")
			case atom.B, atom.Strong:
				if tt == html.StartTagToken {
					boldDepth++
				}
			}
		case html.EndTagToken:
			switch tok.DataAtom {
			case atom.Script, atom.Style:
				if skipDepth > 0 {
					skipDepth--
				}
			case atom.P, atom.Div, atom.Li:
				newline()
			case atom.B, atom.Strong:
				if boldDepth > 0 {
					boldDepth--
				}
			}
		}
	}

	out := blankRuns.ReplaceAllString(b.String(), "\n\n")
	return strings.TrimSpace(out)
}

// PlainText is Sanitize without any styling.
func PlainText(s string) string {
	return Sanitize(s, nil)
}

func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			return r
		case r < 0x20 || r == 0x7f || (r >= 0x80 && r <= 0x9f):
			return -1
		}
		return r
	}, s)
}
