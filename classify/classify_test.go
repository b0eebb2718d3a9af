package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		formal   bool
		branch   string
		category Category
	}{
		{"formal", "Academic research at the University", true, "formal", CategoryFormal},
		{"specialized overrides formal", "Academic research at the University on autism", true, "specialized", CategorySpecialized},
		{"specialized alone is personal", "my son has ADHD", false, "personal", CategoryPersonal},
		{"personal", "I feel overwhelmed today", false, "personal", CategoryPersonal},
		{"empty", "", false, "personal", CategoryPersonal},
	}

	c := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.input)
			assert.Equal(t, tt.formal, got.IsFormal)
			assert.Equal(t, tt.branch, got.SuggestedBranch)
			assert.Equal(t, tt.category, got.Category)
		})
	}
}

func TestClassify_Matches(t *testing.T) {
	got := New().Classify("Neurodivergent students in university research")
	assert.Equal(t, []string{"neurodivergent"}, got.Matches[CategorySpecialized])
	assert.Equal(t, []string{"research", "university"}, got.Matches[CategoryFormal])
	assert.NotContains(t, got.Matches, CategoryPersonal)
}

func TestClassify_Deterministic(t *testing.T) {
	c := New()
	input := "I think the academic journal on dyslexia was great"
	first := c.Classify(input)
	for range 100 {
		assert.Equal(t, first, c.Classify(input))
	}
}

func TestClassify_CustomSets(t *testing.T) {
	c := New(func(o *Options) {
		o.FormalKeywords = []string{"Invoice", "invoice", " "}
		o.FormalBranch = "billing"
	})
	got := c.Classify("Please see the attached INVOICE")
	assert.True(t, got.IsFormal)
	assert.Equal(t, "billing", got.SuggestedBranch)
	assert.Equal(t, []string{"invoice"}, got.Matches[CategoryFormal])
}

func TestClassify_WholeWords(t *testing.T) {
	c := New()

	t.Run("embedded markers do not match", func(t *testing.T) {
		got := c.Classify("Spent some time at the academy reading a studyguide")
		assert.NotContains(t, got.Matches, CategoryPersonal)
		assert.NotContains(t, got.Matches, CategoryFormal)
		assert.Equal(t, CategoryPersonal, got.Category)
	})

	t.Run("markers at punctuation and text edges", func(t *testing.T) {
		got := c.Classify("My garden makes me happy. I'm fine")
		assert.Equal(t, []string{"i'm", "my", "me", "happy"}, got.Matches[CategoryPersonal])
	})

	t.Run("phrases need consecutive words", func(t *testing.T) {
		got := c.Classify("peer reviewed journal; a peer and a review")
		assert.Equal(t, []string{"journal"}, got.Matches[CategoryFormal])
	})

	t.Run("padded custom keywords are trimmed", func(t *testing.T) {
		got := New(func(o *Options) {
			o.PersonalKeywords = []string{" us ", "us"}
		}).Classify("business with us")
		assert.Equal(t, []string{"us"}, got.Matches[CategoryPersonal])
	})
}
