package config

import (
	"maps"

	"github.com/hupe1980/conceptmesh/core"
)

// Merge applies the partial update p to a copy of base. base is not
// modified. A missing Secondary is left as is so the invariant validator can
// recompute it from the merged primary and margin.
func Merge(base core.Configuration, p core.PartialConfiguration) core.Configuration {
	out := base.Clone()
	if out.Branches == nil {
		out.Branches = map[string]core.BranchProfile{}
	}

	setIf(&out.Primary, p.Primary)
	setIf(&out.Margin, p.Margin)
	setIf(&out.Secondary, p.Secondary)
	setIf(&out.EnforceInvariant, p.EnforceInvariant)
	setIf(&out.Tolerance, p.Tolerance)
	setIf(&out.Strict, p.Strict)
	setIf(&out.ProcessingLevel, p.ProcessingLevel)
	setIf(&out.MarginRate, p.MarginRate)
	setIf(&out.MaxJumpDistance, p.MaxJumpDistance)
	setIf(&out.MinConceptLength, p.MinConceptLength)
	setIf(&out.MaxConcepts, p.MaxConcepts)
	setIf(&out.SummaryConcepts, p.SummaryConcepts)
	setIf(&out.DefaultBranch, p.DefaultBranch)
	setIf(&out.Adaptation, p.Adaptation)

	for name, profile := range p.Branches {
		if profile.Name == "" {
			profile.Name = name
		}
		out.Branches[name] = profile
	}
	return out
}

// Diff returns the partial update that turns base into target for scalar
// fields. Branches present in target are always included.
func Diff(base, target core.Configuration) core.PartialConfiguration {
	var p core.PartialConfiguration
	diffIf(&p.Primary, base.Primary, target.Primary)
	diffIf(&p.Margin, base.Margin, target.Margin)
	diffIf(&p.Secondary, base.Secondary, target.Secondary)
	diffIf(&p.EnforceInvariant, base.EnforceInvariant, target.EnforceInvariant)
	diffIf(&p.Tolerance, base.Tolerance, target.Tolerance)
	diffIf(&p.Strict, base.Strict, target.Strict)
	diffIf(&p.ProcessingLevel, base.ProcessingLevel, target.ProcessingLevel)
	diffIf(&p.MarginRate, base.MarginRate, target.MarginRate)
	diffIf(&p.MaxJumpDistance, base.MaxJumpDistance, target.MaxJumpDistance)
	diffIf(&p.MinConceptLength, base.MinConceptLength, target.MinConceptLength)
	diffIf(&p.MaxConcepts, base.MaxConcepts, target.MaxConcepts)
	diffIf(&p.SummaryConcepts, base.SummaryConcepts, target.SummaryConcepts)
	diffIf(&p.DefaultBranch, base.DefaultBranch, target.DefaultBranch)
	diffIf(&p.Adaptation, base.Adaptation, target.Adaptation)
	if len(target.Branches) > 0 {
		p.Branches = maps.Clone(target.Branches)
	}
	return p
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func diffIf[T comparable](dst **T, base, target T) {
	if base != target {
		v := target
		*dst = &v
	}
}
