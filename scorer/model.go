package scorer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/hupe1980/conceptmesh/core"
	"github.com/hupe1980/conceptmesh/logging"
	"github.com/hupe1980/conceptmesh/model"
)

// ErrMalformedResponse is returned when the model reply holds no JSON array.
var ErrMalformedResponse = errors.New("malformed scorer response")

const defaultInstructions = `You relate concepts extracted from a text.
Given one concept and the ordered list of all concepts, return a JSON array of
objects {"to": string, "strength": number between 0 and 1, "distance": integer >= 1}
naming related concepts from the list. Reply with the JSON array only.`

// ModelOptions configures a Model scorer.
type ModelOptions struct {
	Instructions string
	// MaxCandidates caps the number of candidates kept per concept. Zero keeps all.
	MaxCandidates int
	Logger        logging.Logger
}

// Model asks a language model for related concepts.
type Model struct {
	model model.Model
	opts  ModelOptions
}

// NewModel creates a scorer backed by m.
func NewModel(m model.Model, optFns ...func(o *ModelOptions)) *Model {
	opts := ModelOptions{Instructions: defaultInstructions}
	for _, fn := range optFns {
		fn(&opts)
	}
	opts.Logger = logging.OrNoOp(opts.Logger)
	return &Model{model: m, opts: opts}
}

type modelCandidate struct {
	To       string  `json:"to"`
	Strength float64 `json:"strength"`
	Distance int     `json:"distance"`
}

// Score implements core.Scorer. Targets that are not part of concepts are
// discarded; a missing distance falls back to the positional distance.
func (s *Model) Score(ctx context.Context, from core.Concept, concepts []core.Concept) ([]core.Candidate, error) {
	text, err := model.Collect(ctx, s.model, model.Request{
		Instructions: s.opts.Instructions,
		Messages:     []model.Message{{Role: model.RoleUser, Text: prompt(from, concepts)}},
	})
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", s.model.Info().Name, err)
	}

	raw, err := parseCandidates(text)
	if err != nil {
		s.opts.Logger.Warn("scorer.model malformed response concept=%s: %v", from, err)
		return nil, err
	}

	index := make(map[core.Concept]int, len(concepts))
	for i, c := range concepts {
		if _, ok := index[c]; !ok {
			index[c] = i
		}
	}
	fromIdx := index[from]

	out := make([]core.Candidate, 0, len(raw))
	for _, r := range raw {
		to := core.Concept(strings.ToLower(strings.TrimSpace(r.To)))
		j, known := index[to]
		if !known {
			continue
		}
		jump := r.Distance
		if jump < 1 {
			jump = max(abs(j-fromIdx), 1)
		}
		out = append(out, core.Candidate{To: to, Strength: r.Strength, JumpDistance: jump})
		if s.opts.MaxCandidates > 0 && len(out) >= s.opts.MaxCandidates {
			break
		}
	}
	return out, nil
}

func prompt(from core.Concept, concepts []core.Concept) string {
	names := make([]string, len(concepts))
	for i, c := range concepts {
		names[i] = string(c)
	}
	return fmt.Sprintf("concept: %s\nconcepts: %s", from, strings.Join(names, ", "))
}

// parseCandidates extracts the outermost JSON array from text, tolerating
// code fences and surrounding prose.
func parseCandidates(text string) ([]modelCandidate, error) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end < start {
		return nil, ErrMalformedResponse
	}
	var out []modelCandidate
	if err := json.Unmarshal([]byte(text[start:end+1]), &out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return slices.DeleteFunc(out, func(c modelCandidate) bool { return c.To == "" }), nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
