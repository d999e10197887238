package dashboard

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/cases"
)

// fold maps s to its Unicode case-folded form for case-insensitive
// comparison. A cases.Caser is stateful, so one is created per call.
func fold(s string) string {
	return cases.Fold().String(s)
}

// searchKey is the form every searched field and the search term are
// compared in: whitespace runs collapsed to one space, then case-folded.
func searchKey(s string) string {
	return fold(strings.Join(strings.Fields(s), " "))
}

// plainText returns the text content of an HTML fragment with runs of
// whitespace collapsed. Plain strings pass through unchanged apart from
// whitespace collapsing and entity decoding.
func plainText(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return strings.Join(strings.Fields(fragment), " ")
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(fragment))
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.StartTagToken:
			if name, _ := z.TagName(); isHiddenTag(string(name)) {
				skip++
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); isHiddenTag(string(name)) && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
				b.WriteByte(' ')
			}
		}
	}
}

func isHiddenTag(name string) bool {
	return name == "script" || name == "style"
}
