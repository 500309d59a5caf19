package room

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/width"
)

// NewBlacklistFilter builds a ChatFilter that rejects any message
// containing one of words, after folding full-width/half-width forms
// and case so "GARBAGE", "ｇａｒｂａｇｅ", and "garbage" are all caught
// by a single entry. original_source/src/room.hpp hard-codes a single
// substring check on one literal; spec.md §9 calls for generalising
// that into a parameterised predicate over a word list.
func NewBlacklistFilter(words []string) ChatFilter {
	normalized := make([]string, len(words))
	for i, w := range words {
		normalized[i] = normalizeChat(w)
	}
	return func(msg string) bool {
		folded := normalizeChat(msg)
		for _, w := range normalized {
			if w != "" && strings.Contains(folded, w) {
				return true
			}
		}
		return false
	}
}

func normalizeChat(s string) string {
	s = width.Fold.String(s)
	return cases.Fold().String(s)
}

// DefaultBlacklist is the word list carried over from the original
// server's single hard-coded forbidden term.
var DefaultBlacklist = []string{"垃圾"}
