// Package parser implements a lexer and recursive-descent parser for the
// one statement shape this engine evaluates, turning SQL text into
// query.Query values. It is not a general SQL surface — only
// "WITH RECURSIVE ... UNION ... SELECT * INTO ..." is accepted.
package parser

import (
	"unicode"

	"github.com/dropbox/godropbox/errors"
)

type tokenKind int

const (
	tokWord tokenKind = iota
	tokPunct
	tokEOF
)

type token struct {
	kind tokenKind
	text string
}

// lex splits src into words (identifiers, dotted column refs, and
// literals — letters, digits, underscore, dot) and single-character
// punctuation ('(', ')', ',', ';', '=', '>', '*'). Whitespace of any
// kind, including newlines, is insignificant.
func lex(src string) ([]token, error) {
	var toks []token
	runes := []rune(src)
	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case isWordRune(r):
			start := i
			for i < len(runes) && isWordRune(runes[i]) {
				i++
			}
			toks = append(toks, token{kind: tokWord, text: string(runes[start:i])})
		case r == '(' || r == ')' || r == ',' || r == ';' || r == '=' || r == '>' || r == '*':
			toks = append(toks, token{kind: tokPunct, text: string(r)})
			i++
		default:
			return nil, errors.Newf("unexpected character %q at offset %d", r, i)
		}
	}
	toks = append(toks, token{kind: tokEOF})
	return toks, nil
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.'
}

// splitStatements breaks a full token stream into one sub-slice per
// "WITH" keyword occurrence, so a file holding several statements parses
// into several queries; the trailing EOF sentinel stays only on the last
// slice.
func splitStatements(toks []token) [][]token {
	var starts []int
	for i, t := range toks {
		if t.kind == tokWord && isKeyword(t.text, "WITH") {
			starts = append(starts, i)
		}
	}
	if len(starts) == 0 {
		return nil
	}
	var stmts [][]token
	for i, start := range starts {
		end := len(toks)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		stmts = append(stmts, toks[start:end])
	}
	return stmts
}

func isKeyword(text, kw string) bool {
	if len(text) != len(kw) {
		return false
	}
	for i := 0; i < len(text); i++ {
		a, b := text[i], kw[i]
		if 'a' <= a && a <= 'z' {
			a -= 'a' - 'A'
		}
		if 'a' <= b && b <= 'z' {
			b -= 'a' - 'A'
		}
		if a != b {
			return false
		}
	}
	return true
}
