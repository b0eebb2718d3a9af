// Package classify labels input text with a context category and suggests a
// branch profile. Classification is keyword based, pure and deterministic.
package classify

import (
	"slices"
	"strings"
	"unicode"
)

// Category is the detected context category.
type Category string

const (
	CategoryPersonal    Category = "personal"
	CategoryFormal      Category = "formal"
	CategorySpecialized Category = "specialized"
)

// Default keyword sets. Keywords match whole words; multi-word entries match
// as phrases of consecutive words.
var (
	DefaultSpecializedKeywords = []string{
		"autism", "autistic", "adhd", "neurodivergent", "neurodiversity",
		"dyslexia", "dyspraxia", "asperger", "sensory processing", "executive function",
		"stimming", "masking",
	}
	DefaultFormalKeywords = []string{
		"academic", "research", "university", "study", "studies", "journal",
		"institution", "institutional", "thesis", "dissertation", "peer review",
		"methodology", "hypothesis", "professor", "faculty", "publication",
	}
	DefaultPersonalKeywords = []string{
		"i feel", "i think", "i am", "i'm", "my", "me", "myself",
		"feel", "feeling", "anxious", "happy", "sad", "worried", "overwhelmed",
	}
)

// Classification is the classifier verdict.
type Classification struct {
	IsFormal        bool
	SuggestedBranch string
	Category        Category
	// Matches lists the matched keywords per category in scan order.
	Matches map[Category][]string
}

// Options configures a Classifier.
type Options struct {
	SpecializedKeywords []string
	FormalKeywords      []string
	PersonalKeywords    []string

	// Branch names suggested for each category.
	SpecializedBranch string
	FormalBranch      string
	PersonalBranch    string
}

// Classifier maps text to a Classification. It is immutable after
// construction and safe for concurrent use.
type Classifier struct {
	opts Options

	specialized, formal, personal []phrase
}

// phrase is a keyword together with its word sequence.
type phrase struct {
	keyword string
	words   []string
}

// New creates a Classifier with the default keyword sets.
func New(optFns ...func(o *Options)) *Classifier {
	opts := Options{
		SpecializedKeywords: DefaultSpecializedKeywords,
		FormalKeywords:      DefaultFormalKeywords,
		PersonalKeywords:    DefaultPersonalKeywords,
		SpecializedBranch:   string(CategorySpecialized),
		FormalBranch:        string(CategoryFormal),
		PersonalBranch:      string(CategoryPersonal),
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	opts.SpecializedKeywords = normalize(opts.SpecializedKeywords)
	opts.FormalKeywords = normalize(opts.FormalKeywords)
	opts.PersonalKeywords = normalize(opts.PersonalKeywords)
	return &Classifier{
		opts:        opts,
		specialized: phrases(opts.SpecializedKeywords),
		formal:      phrases(opts.FormalKeywords),
		personal:    phrases(opts.PersonalKeywords),
	}
}

// Classify scans text against the specialized, formal and personal sets.
// Specialized markers only win together with formal markers; formal markers
// alone select the formal branch; everything else is personal.
func (c *Classifier) Classify(text string) Classification {
	tokens := words(text)

	matches := map[Category][]string{}
	if m := scan(tokens, c.specialized); len(m) > 0 {
		matches[CategorySpecialized] = m
	}
	if m := scan(tokens, c.formal); len(m) > 0 {
		matches[CategoryFormal] = m
	}
	if m := scan(tokens, c.personal); len(m) > 0 {
		matches[CategoryPersonal] = m
	}

	_, specialized := matches[CategorySpecialized]
	_, formal := matches[CategoryFormal]

	out := Classification{IsFormal: formal, Matches: matches}
	switch {
	case specialized && formal:
		out.Category = CategorySpecialized
		out.SuggestedBranch = c.opts.SpecializedBranch
	case formal:
		out.Category = CategoryFormal
		out.SuggestedBranch = c.opts.FormalBranch
	default:
		out.Category = CategoryPersonal
		out.SuggestedBranch = c.opts.PersonalBranch
	}
	return out
}

func scan(tokens []string, keywords []phrase) []string {
	var out []string
	for _, p := range keywords {
		if containsRun(tokens, p.words) {
			out = append(out, p.keyword)
		}
	}
	return out
}

// containsRun reports whether run occurs in tokens as consecutive elements.
func containsRun(tokens, run []string) bool {
	if len(run) == 0 {
		return false
	}
	for i := 0; i+len(run) <= len(tokens); i++ {
		if slices.Equal(tokens[i:i+len(run)], run) {
			return true
		}
	}
	return false
}

// words splits lowercased text on every rune that is neither a letter nor a
// digit, so "I'm" yields "i" and "m" for text and keyword alike.
func words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func phrases(keywords []string) []phrase {
	out := make([]phrase, 0, len(keywords))
	for _, k := range keywords {
		out = append(out, phrase{keyword: k, words: words(k)})
	}
	return out
}

func normalize(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if len(words(k)) == 0 || slices.Contains(out, k) {
			continue
		}
		out = append(out, k)
	}
	return out
}
