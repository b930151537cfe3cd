// Package notify assembles reminder text from branch templates and hands it to a
// Sender. Rendering is pure; delivery belongs to whatever Sender is plugged in.
package notify

import (
	"regexp"
	"sort"
)

// Kind selects the template and its placeholder vocabulary
type Kind string

const (
	KindPayment Kind = "payment"
	KindRenewal Kind = "renewal"
)

// Placeholder tokens
const (
	TokenName        = "name"
	TokenProjectName = "project_name"
	TokenNextPayDay  = "next_pay_day"
	TokenAmount      = "amount"
	TokenEndDay      = "end_day"
)

var vocabularies = map[Kind]map[string]struct{}{
	KindPayment: {TokenName: {}, TokenProjectName: {}, TokenNextPayDay: {}, TokenAmount: {}},
	KindRenewal: {TokenName: {}, TokenProjectName: {}, TokenEndDay: {}},
}

var tokenPattern = regexp.MustCompile(`\[([A-Za-z0-9_]+)\]`)

// ParseKind validates a kind coming from a request
func ParseKind(s string) (Kind, bool) {
	k := Kind(s)
	_, ok := vocabularies[k]
	return k, ok
}

// Vocabulary returns the sorted token names a kind may reference
func Vocabulary(kind Kind) []string {
	vocab := vocabularies[kind]
	out := make([]string, 0, len(vocab))
	for token := range vocab {
		out = append(out, token)
	}
	sort.Strings(out)
	return out
}

// RenderTemplate replaces every [token] that belongs to the kind's vocabulary
// and has a field value. Anything else stays in the output verbatim.
func RenderTemplate(kind Kind, template string, fields map[string]string) string {
	vocab := vocabularies[kind]
	return tokenPattern.ReplaceAllStringFunc(template, func(match string) string {
		token := match[1 : len(match)-1]
		if _, known := vocab[token]; !known {
			return match
		}
		value, ok := fields[token]
		if !ok {
			return match
		}
		return value
	})
}

// UnknownTokens lists the tokens a template uses outside its kind's vocabulary,
// in order of first appearance
func UnknownTokens(kind Kind, template string) []string {
	vocab := vocabularies[kind]
	seen := make(map[string]struct{})
	var unknown []string
	for _, m := range tokenPattern.FindAllStringSubmatch(template, -1) {
		token := m[1]
		if _, known := vocab[token]; known {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		unknown = append(unknown, token)
	}
	return unknown
}
