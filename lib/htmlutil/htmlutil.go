package htmlutil

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/PuerkitoBio/purell"
	"golang.org/x/net/html"
)

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	// <br> counts as a line break so ingredient blocks that use it
	// instead of newlines still split into lines
	if node.Type == html.ElementNode && node.Data == "br" {
		buffer.WriteByte('\n')
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

// SelectionText concatenates the text of every node in sel.
func SelectionText(sel *goquery.Selection) string {
	var buffer bytes.Buffer
	for _, n := range sel.Nodes {
		getTextRecursive(n, &buffer)
	}
	return buffer.String()
}

var innerWhitespace = regexp.MustCompile(`\s+`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		switch {
		case c == '\n':
			newStr.WriteRune(c)
		case unicode.IsSpace(c):
			newStr.WriteRune(' ')
		case unicode.IsPrint(c):
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// Clean strips non-printable characters, trims and collapses inner whitespace.
func Clean(s string) string {
	s = removeNonPrintable(s)
	s = strings.TrimSpace(s)
	return innerWhitespace.ReplaceAllString(s, " ")
}

// Lines splits text on newlines, trimming every line and dropping the blank ones.
func Lines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(removeNonPrintable(line))
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

// AfterLabel returns the trimmed text after the first colon of a
// "Label : value" string, ok is false when there is no colon.
func AfterLabel(text string) (string, bool) {
	_, value, ok := strings.Cut(text, ":")
	if !ok {
		return "", false
	}
	return Clean(value), true
}

const urlFlags = purell.FlagsSafe | purell.FlagRemoveFragment

// AbsoluteURL resolves href against base and normalizes the result,
// absolute hrefs are only normalized.
func AbsoluteURL(base *url.URL, href string) (string, error) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", fmt.Errorf("empty url")
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	resolved := base.ResolveReference(ref)
	if resolved.Scheme == "" || resolved.Host == "" {
		return "", fmt.Errorf("could not make %q absolute", href)
	}
	return purell.NormalizeURL(resolved, urlFlags), nil
}
