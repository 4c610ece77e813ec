// Package chem provides syntactic checks for chemical identifiers used as
// schema-level domain validators. Semantic interpretation (canonicalization,
// scoring) stays with the prediction workers.
package chem

import (
	"fmt"
	"strings"
)

// organicSubset lists the atom symbols that may appear outside brackets,
// longest first so two-letter symbols match before their one-letter prefix.
var organicSubset = []string{"Cl", "Br", "B", "C", "N", "O", "P", "S", "F", "I"}

const aromaticAtoms = "bcnops"
const bondChars = "-=#$:/\\~"

// ValidateSMILES checks that the string is syntactically well-formed SMILES:
// recognized atom tokens, balanced branches, closed bracket atoms and valid
// ring-closure digits. It does not verify chemical meaning.
func ValidateSMILES(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("empty smiles")
	}
	depth := 0
	atoms := 0
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == '(':
			depth++
			i++
		case c == ')':
			depth--
			if depth < 0 {
				return fmt.Errorf("unbalanced branch at position %d", i)
			}
			i++
		case c == '[':
			end := strings.IndexByte(s[i:], ']')
			if end <= 1 {
				return fmt.Errorf("unclosed bracket atom at position %d", i)
			}
			if !validBracketAtom(s[i+1 : i+end]) {
				return fmt.Errorf("invalid bracket atom at position %d", i)
			}
			atoms++
			i += end + 1
		case c == '%':
			if i+2 >= len(s) || !isDigit(s[i+1]) || !isDigit(s[i+2]) {
				return fmt.Errorf("invalid ring closure at position %d", i)
			}
			i += 3
		case isDigit(c):
			i++
		case c == '.':
			i++
		case strings.IndexByte(bondChars, c) >= 0:
			i++
		case c == '*':
			atoms++
			i++
		case strings.IndexByte(aromaticAtoms, c) >= 0:
			atoms++
			i++
		default:
			n := organicAtomLen(s[i:])
			if n == 0 {
				return fmt.Errorf("unrecognized symbol %q at position %d", s[i], i)
			}
			atoms++
			i += n
		}
	}
	if depth != 0 {
		return fmt.Errorf("unbalanced branch")
	}
	if atoms == 0 {
		return fmt.Errorf("no atoms")
	}
	return nil
}

// organicAtomLen returns the length of an organic-subset atom symbol at the
// start of s, or 0 when none matches.
func organicAtomLen(s string) int {
	for _, sym := range organicSubset {
		if strings.HasPrefix(s, sym) {
			return len(sym)
		}
	}
	return 0
}

// validBracketAtom accepts the characters allowed inside [...]: element
// symbols, isotopes, charge, chirality and hydrogen counts.
func validBracketAtom(body string) bool {
	hasLetter := false
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z':
			hasLetter = true
		case isDigit(c), c == '+', c == '-', c == '@', c == '*':
		default:
			return false
		}
	}
	return hasLetter || strings.Contains(body, "*")
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
