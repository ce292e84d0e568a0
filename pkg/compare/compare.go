// Package compare reports the differences between two metabolic models.
// A useful comparison requires both models to use the same id namespace:
// comparing two ModelSEED models is valid, comparing a ModelSEED model
// with a BiGG model is not.
package compare

import (
	"sort"

	"metabocore/pkg/model"
)

// ReactionDiff pairs the two versions of a reaction that matched by id
// but differ in some attribute.
type ReactionDiff struct {
	First  *model.Reaction
	Second *model.Reaction
}

// MetaboliteDiff pairs the two versions of a metabolite that matched by
// id but differ in some attribute.
type MetaboliteDiff struct {
	First  *model.Metabolite
	Second *model.Metabolite
}

// Result holds the computed differences between two models. Slices are
// ordered by id ascending.
type Result struct {
	FirstID  string
	SecondID string

	ReactionsInFirst      int
	ReactionsInSecond     int
	ReactionsMatched      int
	ReactionsOnlyInFirst  []*model.Reaction
	ReactionsOnlyInSecond []*model.Reaction

	ReactionNameDiffs       []ReactionDiff
	ReactionBoundsDiffs     []ReactionDiff
	ReactionDefinitionDiffs []ReactionDiff
	ReactionGeneDiffs       []ReactionDiff

	MetabolitesInFirst      int
	MetabolitesInSecond     int
	MetabolitesMatched      int
	MetabolitesOnlyInFirst  []*model.Metabolite
	MetabolitesOnlyInSecond []*model.Metabolite

	MetaboliteNameDiffs        []MetaboliteDiff
	MetaboliteFormulaDiffs     []MetaboliteDiff
	MetaboliteChargeDiffs      []MetaboliteDiff
	MetaboliteCompartmentDiffs []MetaboliteDiff

	BoundaryInFirst  int
	BoundaryInSecond int
}

// Models computes the differences between two models.
func Models(first, second *model.Model) *Result {
	result := &Result{
		FirstID:             first.MID,
		SecondID:            second.MID,
		ReactionsInFirst:    first.Reactions.Len(),
		ReactionsInSecond:   second.Reactions.Len(),
		MetabolitesInFirst:  first.Metabolites.Len(),
		MetabolitesInSecond: second.Metabolites.Len(),
	}

	for _, rxn1 := range first.Reactions.All() {
		rxn2, ok := second.Reactions.GetByID(rxn1.RID)
		if !ok {
			result.ReactionsOnlyInFirst = append(result.ReactionsOnlyInFirst, rxn1)
			continue
		}
		result.ReactionsMatched++
		if rxn1.Name != rxn2.Name {
			result.ReactionNameDiffs = append(result.ReactionNameDiffs, ReactionDiff{rxn1, rxn2})
		}
		if rxn1.LowerBound != rxn2.LowerBound || rxn1.UpperBound != rxn2.UpperBound {
			result.ReactionBoundsDiffs = append(result.ReactionBoundsDiffs, ReactionDiff{rxn1, rxn2})
		}
		if rxn1.Equation() != rxn2.Equation() {
			result.ReactionDefinitionDiffs = append(result.ReactionDefinitionDiffs, ReactionDiff{rxn1, rxn2})
		}
		if rxn1.GeneRule != rxn2.GeneRule {
			result.ReactionGeneDiffs = append(result.ReactionGeneDiffs, ReactionDiff{rxn1, rxn2})
		}
	}
	for _, rxn2 := range second.Reactions.All() {
		if !first.Reactions.HasID(rxn2.RID) {
			result.ReactionsOnlyInSecond = append(result.ReactionsOnlyInSecond, rxn2)
		}
	}

	for _, met1 := range first.Metabolites.All() {
		met2, ok := second.Metabolites.GetByID(met1.MID)
		if !ok {
			result.MetabolitesOnlyInFirst = append(result.MetabolitesOnlyInFirst, met1)
			continue
		}
		result.MetabolitesMatched++
		if met1.Name != met2.Name {
			result.MetaboliteNameDiffs = append(result.MetaboliteNameDiffs, MetaboliteDiff{met1, met2})
		}
		if met1.Formula != met2.Formula {
			result.MetaboliteFormulaDiffs = append(result.MetaboliteFormulaDiffs, MetaboliteDiff{met1, met2})
		}
		if !chargeEqual(met1.Charge, met2.Charge) {
			result.MetaboliteChargeDiffs = append(result.MetaboliteChargeDiffs, MetaboliteDiff{met1, met2})
		}
		if met1.Compartment != met2.Compartment {
			result.MetaboliteCompartmentDiffs = append(result.MetaboliteCompartmentDiffs, MetaboliteDiff{met1, met2})
		}
	}
	for _, met2 := range second.Metabolites.All() {
		if !first.Metabolites.HasID(met2.MID) {
			result.MetabolitesOnlyInSecond = append(result.MetabolitesOnlyInSecond, met2)
		}
	}

	result.BoundaryInFirst = len(first.Reactions.Query((*model.Reaction).Boundary))
	result.BoundaryInSecond = len(second.Reactions.Query((*model.Reaction).Boundary))

	sortReactions(result.ReactionsOnlyInFirst)
	sortReactions(result.ReactionsOnlyInSecond)
	sortMetabolites(result.MetabolitesOnlyInFirst)
	sortMetabolites(result.MetabolitesOnlyInSecond)
	sortReactionDiffs(result.ReactionNameDiffs)
	sortReactionDiffs(result.ReactionBoundsDiffs)
	sortReactionDiffs(result.ReactionDefinitionDiffs)
	sortReactionDiffs(result.ReactionGeneDiffs)
	sortMetaboliteDiffs(result.MetaboliteNameDiffs)
	sortMetaboliteDiffs(result.MetaboliteFormulaDiffs)
	sortMetaboliteDiffs(result.MetaboliteChargeDiffs)
	sortMetaboliteDiffs(result.MetaboliteCompartmentDiffs)
	return result
}

func chargeEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func sortReactions(rxns []*model.Reaction) {
	sort.Slice(rxns, func(i, j int) bool { return rxns[i].RID < rxns[j].RID })
}

func sortMetabolites(mets []*model.Metabolite) {
	sort.Slice(mets, func(i, j int) bool { return mets[i].MID < mets[j].MID })
}

func sortReactionDiffs(diffs []ReactionDiff) {
	sort.Slice(diffs, func(i, j int) bool { return diffs[i].First.RID < diffs[j].First.RID })
}

func sortMetaboliteDiffs(diffs []MetaboliteDiff) {
	sort.Slice(diffs, func(i, j int) bool { return diffs[i].First.MID < diffs[j].First.MID })
}
