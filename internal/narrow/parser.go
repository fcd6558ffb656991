// Package narrow parses and describes message-list narrows: the filter that
// decides which messages the view shows (a stream, a topic, a search...).
package narrow

import (
	"strings"
)

// Operator names. Aliases accepted by Parse are canonicalized to these.
const (
	OpStream  = "stream"
	OpStreams = "streams"
	OpTopic   = "topic"
	OpDM      = "dm"
	OpSender  = "sender"
	OpIs      = "is"
	OpIn      = "in"
	OpHas     = "has"
	OpNear    = "near"
	OpID      = "id"
	OpSearch  = "search"
)

// Term is a single operator:operand pair of a narrow.
type Term struct {
	Operator string
	Operand  string
	Negated  bool
}

var operatorAliases = map[string]string{
	"stream":   OpStream,
	"channel":  OpStream,
	"streams":  OpStreams,
	"channels": OpStreams,
	"topic":    OpTopic,
	"subject":  OpTopic,
	"dm":       OpDM,
	"pm-with":  OpDM,
	"sender":   OpSender,
	"from":     OpSender,
	"is":       OpIs,
	"in":       OpIn,
	"has":      OpHas,
	"near":     OpNear,
	"id":       OpID,
	"search":   OpSearch,
}

// lowercaseOperands lists operators whose operands are keywords.
var lowercaseOperands = map[string]bool{
	OpIs:      true,
	OpIn:      true,
	OpHas:     true,
	OpStreams: true,
}

// Parse parses a narrow string into terms.
//
// Supported syntax:
//   - operator:operand, e.g. stream:general topic:lunch
//   - operator:"quoted operand" for operands containing spaces
//   - -operator:operand for negation
//   - bare words and "quoted phrases", collected into a single search term
//
// Unknown operators are treated as search text.
func Parse(narrowStr string) []Term {
	var terms []Term
	var searchWords []string

	for _, token := range tokenize(narrowStr) {
		if isQuotedPhrase(token) {
			searchWords = append(searchWords, token)
			continue
		}

		negated := false
		body := token
		if strings.HasPrefix(body, "-") && len(body) > 1 {
			negated = true
			body = body[1:]
		}

		if idx := strings.Index(body, ":"); idx > 0 {
			op, ok := operatorAliases[strings.ToLower(body[:idx])]
			if ok {
				operand := unquote(body[idx+1:])
				if lowercaseOperands[op] {
					operand = strings.ToLower(operand)
				}
				if op == OpSearch {
					searchWords = append(searchWords, operand)
					continue
				}
				terms = append(terms, Term{Operator: op, Operand: operand, Negated: negated})
				continue
			}
		}

		searchWords = append(searchWords, token)
	}

	if len(searchWords) > 0 {
		terms = append(terms, Term{Operator: OpSearch, Operand: strings.Join(searchWords, " ")})
	}
	return terms
}

// Unparse renders terms back into the textual form accepted by Parse.
func Unparse(terms []Term) string {
	parts := make([]string, 0, len(terms))
	for _, t := range terms {
		if t.Operator == OpSearch {
			if t.Operand != "" {
				parts = append(parts, t.Operand)
			}
			continue
		}
		prefix := ""
		if t.Negated {
			prefix = "-"
		}
		parts = append(parts, prefix+t.Operator+":"+quoteOperand(t.Operand))
	}
	return strings.Join(parts, " ")
}

// quoteOperand wraps operands that would not survive tokenize in double
// quotes, escaping embedded quotes and backslashes.
func quoteOperand(operand string) string {
	if operand != "" && !strings.ContainsAny(operand, " \t\"") {
		return operand
	}
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(operand) + `"`
}

// unquote removes surrounding double quotes from a string if present.
func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

// isQuotedPhrase returns true if the token is a double-quoted phrase.
func isQuotedPhrase(token string) bool {
	return len(token) > 2 && token[0] == '"' && token[len(token)-1] == '"'
}

// tokenize splits a narrow string on whitespace, keeping "quoted phrases"
// and op:"quoted value" pairs whole. A double quote opens a quoted section
// only at the start of a token or right after an operator's colon; anywhere
// else it is literal, as are apostrophes. Inside an op:"value" section \"
// and \\ stand for a literal quote and backslash. Phrases keep their escapes
// verbatim since they are search text.
func tokenize(narrowStr string) []string {
	var tokens []string
	var current strings.Builder
	inQuotes := false
	escaped := false
	// opQuoted marks a quoted section that started as op:"value".
	opQuoted := false

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for _, char := range narrowStr {
		switch {
		case escaped:
			if !opQuoted || (char != '"' && char != '\\') {
				current.WriteRune('\\')
			}
			current.WriteRune(char)
			escaped = false
		case inQuotes && char == '\\':
			escaped = true
		case char == '"' && !inQuotes && (current.Len() == 0 || strings.HasSuffix(current.String(), ":")):
			inQuotes = true
			opQuoted = current.Len() > 0
			current.WriteRune('"')
		case char == '"' && inQuotes:
			inQuotes = false
			current.WriteRune('"')
			if !opQuoted && current.Len() == 2 {
				// Empty phrase.
				current.Reset()
			}
			flush()
			opQuoted = false
		case (char == ' ' || char == '\t') && !inQuotes:
			flush()
		default:
			current.WriteRune(char)
		}
	}
	if escaped {
		current.WriteRune('\\')
	}
	flush()

	return tokens
}
