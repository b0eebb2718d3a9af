package compose

import (
	"fmt"
	"strings"

	"github.com/hupe1980/conceptmesh/core"
	"github.com/hupe1980/conceptmesh/graph"
	"github.com/hupe1980/conceptmesh/internal/util"
	"github.com/hupe1980/conceptmesh/invariant"
)

// FallbackAnswer is the answer of every fallback result.
const FallbackAnswer = "I was not able to process this input. Please try rephrasing it or adding more detail."

// Built-in answer templates per style.
var styleTemplates = map[core.ResponseStyle]string{
	core.StyleConversational: `{{if .Summary}}From what you shared, I picked up on {{join ", " .Summary}}.{{else}}I could not find much to connect in what you shared.{{end}} ` +
		`{{.Retained}} {{plural .Retained "connection" "connections"}} between these ideas stood out.`,
	core.StyleAcademic: `The analysis identified {{.ConceptCount}} {{plural .ConceptCount "concept" "concepts"}}` +
		`{{if .Summary}}, principally {{join ", " .Summary}}{{end}}. ` +
		`{{.Retained}} of {{.Built}} candidate {{plural .Built "connection" "connections"}} exceeded the admission threshold of {{fixed 3 .Threshold}}.`,
	core.StyleStructured: "Concepts: {{if .Summary}}{{join \", \" .Summary}}{{else}}none{{end}}\n" +
		"Retained connections: {{.Retained}}/{{.Built}}\n" +
		"Branch: {{.Branch}}",
}

// Input is everything the composer needs from one processing call.
type Input struct {
	Config   core.Configuration
	Profile  core.BranchProfile
	Concepts []core.Concept
	Built    int
	Retained []core.ConnectionEdge
	Filter   graph.FilterReport
}

// Options configures a Composer.
type Options struct {
	// SummaryConcepts overrides Configuration.SummaryConcepts when positive.
	SummaryConcepts int
}

// Composer renders processing results.
type Composer struct {
	opts Options
}

// New creates a Composer.
func New(optFns ...func(o *Options)) *Composer {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Composer{opts: opts}
}

// Compose builds a successful result. Rendering failures are returned wrapped
// in core.ErrComposer. ID, Duration and Timestamp are left to the caller.
func (c *Composer) Compose(in Input) (core.ProcessingResult, error) {
	n := in.Config.SummaryConcepts
	if c.opts.SummaryConcepts > 0 {
		n = c.opts.SummaryConcepts
	}
	summary := SummaryConcepts(in.Concepts, in.Retained, n)

	style := in.Profile.ResponseStyle
	text := in.Profile.Template
	if text == "" {
		tmpl, ok := styleTemplates[style]
		if !ok {
			style = core.StyleConversational
			tmpl = styleTemplates[style]
		}
		text = tmpl
	}

	answer, err := util.RenderTemplate(text, map[string]any{
		"Summary":      toStrings(summary),
		"Concepts":     toStrings(in.Concepts),
		"ConceptCount": len(in.Concepts),
		"Retained":     len(in.Retained),
		"Built":        in.Built,
		"Branch":       in.Profile.Name,
		"Style":        string(style),
		"Exponent":     in.Filter.Exponent,
		"Capacity":     in.Filter.Capacity,
		"Threshold":    in.Filter.Threshold,
	})
	if err != nil {
		return core.ProcessingResult{}, fmt.Errorf("%w: branch %s: %w", core.ErrComposer, in.Profile.Name, err)
	}

	return core.ProcessingResult{
		Answer: strings.TrimSpace(answer),
		SupportingDetails: fmt.Sprintf(
			"branch=%s style=%s exponent=%.3f capacity=%.4f threshold=%.4f edges_built=%d edges_retained=%d concepts=%d",
			in.Profile.Name, style, in.Filter.Exponent, in.Filter.Capacity, in.Filter.Threshold,
			in.Built, len(in.Retained), len(in.Concepts),
		),
		Concepts:      append([]core.Concept{}, in.Concepts...),
		EdgesBuilt:    in.Built,
		EdgesRetained: len(in.Retained),
		Alignment:     invariant.Alignment(in.Config),
		Branch:        in.Profile.Name,
		Success:       true,
	}, nil
}

// Fallback builds the result returned when processing fails. Alignment is
// always populated from cfg.
func Fallback(cfg core.Configuration, branch string, reason error) core.ProcessingResult {
	res := core.ProcessingResult{
		Answer:            FallbackAnswer,
		SupportingDetails: "processing did not complete",
		Concepts:          []core.Concept{},
		Alignment:         invariant.Alignment(cfg),
		Branch:            branch,
		Success:           false,
	}
	if reason != nil {
		res.Error = reason.Error()
		res.SupportingDetails = "processing did not complete: " + reason.Error()
	}
	return res
}

// SummaryConcepts returns up to n concepts touched by a retained edge, in
// extraction order. Without retained edges the leading extracted concepts
// are used.
func SummaryConcepts(concepts []core.Concept, retained []core.ConnectionEdge, n int) []core.Concept {
	if n <= 0 {
		return nil
	}
	if len(retained) == 0 {
		return append([]core.Concept{}, concepts[:min(n, len(concepts))]...)
	}
	touched := make(map[core.Concept]struct{}, len(retained)*2)
	for _, e := range retained {
		touched[e.From] = struct{}{}
		touched[e.To] = struct{}{}
	}
	out := make([]core.Concept, 0, n)
	for _, c := range concepts {
		if _, ok := touched[c]; !ok {
			continue
		}
		out = append(out, c)
		if len(out) == n {
			break
		}
	}
	return out
}

func toStrings(concepts []core.Concept) []string {
	out := make([]string, len(concepts))
	for i, c := range concepts {
		out[i] = string(c)
	}
	return out
}
