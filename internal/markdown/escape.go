// Package markdown renders collected message records as Markdown documents.
package markdown

import "github.com/dlclark/regexp2"

// The escaping rule is a two-pass lookaround heuristic, not a bracket
// matcher: a '[' is escaped unless some '](...)' follows it later in the
// text, a ']' is escaped unless some '(...)' follows. Already escaped
// brackets are left alone via the lookbehind. Texts with several
// independent bracket pairs can slip through unescaped; kept as is for
// output compatibility.
var (
	openBracketRe  = regexp2.MustCompile(`(?<!\\)\[(?!.*?\]\(.*?\))`, regexp2.None)
	closeBracketRe = regexp2.MustCompile(`(?<!\\)\](?!.*?\))`, regexp2.None)
)

// EscapeBrackets escapes square brackets that would break Markdown link
// syntax while leaving well-formed [text](url) constructs intact. Total
// over any input: on a regex engine error the input is returned unchanged.
func EscapeBrackets(text string) string {
	out, err := openBracketRe.Replace(text, `\[`, -1, -1)
	if err != nil {
		return text
	}
	escaped, err := closeBracketRe.Replace(out, `\]`, -1, -1)
	if err != nil {
		return out
	}
	return escaped
}
