// Package extract turns free text into candidate concepts.
//
// Extraction is pattern based: the input is split on runs of characters that
// are neither letters nor digits, lowercased, and tokens longer than a minimum
// rune length are yielded. Sequences are lazy and can be ranged over any
// number of times with identical results.
package extract

import (
	"fmt"
	"iter"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hupe1980/conceptmesh/core"
)

// DefaultMinLength is the default minimum length; tokens must be longer.
const DefaultMinLength = 4

// Options configures an Extractor.
type Options struct {
	// MinLength is exclusive: a token is kept when its rune count is greater.
	MinLength int
}

// Extractor yields concepts from text.
type Extractor struct {
	minLength int
}

// New creates an Extractor.
func New(optFns ...func(o *Options)) *Extractor {
	opts := Options{MinLength: DefaultMinLength}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Extractor{minLength: max(opts.MinLength, 0)}
}

// MinLength returns the exclusive minimum token length.
func (e *Extractor) MinLength() int { return e.minLength }

// Concepts returns a lazy sequence over the concepts in input. Accepted inputs
// are string, []byte, *string and fmt.Stringer; anything else, nil included,
// yields an empty sequence.
func (e *Extractor) Concepts(input any) iter.Seq[core.Concept] {
	text, ok := asText(input)
	if !ok || text == "" {
		return func(func(core.Concept) bool) {}
	}
	return func(yield func(core.Concept) bool) {
		rest := text
		for rest != "" {
			start := strings.IndexFunc(rest, isWordRune)
			if start < 0 {
				return
			}
			rest = rest[start:]
			end := strings.IndexFunc(rest, isSeparator)
			if end < 0 {
				end = len(rest)
			}
			token := rest[:end]
			rest = rest[end:]

			if utf8.RuneCountInString(token) <= e.minLength {
				continue
			}
			if !yield(core.Concept(strings.ToLower(token))) {
				return
			}
		}
	}
}

// Unique collects distinct concepts from seq in first-seen order. A limit of
// zero or less means no limit.
func Unique(seq iter.Seq[core.Concept], limit int) []core.Concept {
	seen := make(map[core.Concept]struct{})
	out := make([]core.Concept, 0)
	for c := range seq {
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

func asText(input any) (string, bool) {
	switch v := input.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	case *string:
		if v == nil {
			return "", false
		}
		return *v, true
	case fmt.Stringer:
		if isNil(v) {
			return "", false
		}
		return v.String(), true
	default:
		return "", false
	}
}

// isNil reports whether v holds a typed nil pointer, map, slice, func,
// chan or interface.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}

func isWordRune(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }

func isSeparator(r rune) bool { return !isWordRune(r) }
