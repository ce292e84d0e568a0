package compare

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"metabocore/pkg/model"
)

// Detail selects an optional section of the written report.
type Detail string

const (
	DetailReactionID            Detail = "reaction_id"
	DetailReactionName          Detail = "reaction_name"
	DetailReactionBounds        Detail = "reaction_bounds"
	DetailReactionDefinition    Detail = "reaction_definition"
	DetailReactionGene          Detail = "reaction_gene"
	DetailMetaboliteID          Detail = "metabolite_id"
	DetailMetaboliteName        Detail = "metabolite_name"
	DetailMetaboliteFormula     Detail = "metabolite_formula"
	DetailMetaboliteCharge      Detail = "metabolite_charge"
	DetailMetaboliteCompartment Detail = "metabolite_compartment"
)

// Options controls which sections Write renders beyond the summary
// counts.
type Options struct {
	Details  []Detail
	Boundary bool
}

func (o Options) has(d Detail) bool {
	for _, detail := range o.Details {
		if detail == d {
			return true
		}
	}
	return false
}

// Write renders a comparison result as a plain-text report.
func Write(w io.Writer, r *Result, opts Options) error {
	out := &reportWriter{w: w}

	out.printf("REACTIONS\n---------\n")
	out.printf("%d reactions in %s\n", r.ReactionsInFirst, r.FirstID)
	out.printf("%d reactions in %s\n\n", r.ReactionsInSecond, r.SecondID)
	out.printf("%d reactions in both %s and %s\n", r.ReactionsMatched, r.FirstID, r.SecondID)
	out.printf("%d reactions only in %s\n\n", len(r.ReactionsOnlyInFirst), r.FirstID)
	if opts.has(DetailReactionID) {
		out.reactionTable(r.ReactionsOnlyInFirst)
	}
	out.printf("%d reactions only in %s\n\n", len(r.ReactionsOnlyInSecond), r.SecondID)
	if opts.has(DetailReactionID) {
		out.reactionTable(r.ReactionsOnlyInSecond)
	}

	out.printf("%d reactions with different names\n", len(r.ReactionNameDiffs))
	if opts.has(DetailReactionName) {
		out.reactionDiffTable(r.ReactionNameDiffs, func(rxn *model.Reaction) string { return rxn.Name })
	}
	out.printf("%d reactions with different bounds\n", len(r.ReactionBoundsDiffs))
	if opts.has(DetailReactionBounds) {
		out.reactionDiffTable(r.ReactionBoundsDiffs, func(rxn *model.Reaction) string {
			return fmt.Sprintf("(%g, %g)", rxn.LowerBound, rxn.UpperBound)
		})
	}
	out.printf("%d reactions with different definitions\n", len(r.ReactionDefinitionDiffs))
	if opts.has(DetailReactionDefinition) {
		out.reactionDiffTable(r.ReactionDefinitionDiffs, (*model.Reaction).Equation)
	}
	out.printf("%d reactions with different genes\n", len(r.ReactionGeneDiffs))
	if opts.has(DetailReactionGene) {
		out.reactionDiffTable(r.ReactionGeneDiffs, func(rxn *model.Reaction) string { return rxn.GeneRule })
	}

	out.printf("\nMETABOLITES\n-----------\n")
	out.printf("%d metabolites in %s\n", r.MetabolitesInFirst, r.FirstID)
	out.printf("%d metabolites in %s\n\n", r.MetabolitesInSecond, r.SecondID)
	out.printf("%d metabolites in both %s and %s\n", r.MetabolitesMatched, r.FirstID, r.SecondID)
	out.printf("%d metabolites only in %s\n\n", len(r.MetabolitesOnlyInFirst), r.FirstID)
	if opts.has(DetailMetaboliteID) {
		out.metaboliteTable(r.MetabolitesOnlyInFirst)
	}
	out.printf("%d metabolites only in %s\n\n", len(r.MetabolitesOnlyInSecond), r.SecondID)
	if opts.has(DetailMetaboliteID) {
		out.metaboliteTable(r.MetabolitesOnlyInSecond)
	}

	out.printf("%d metabolites with different names\n", len(r.MetaboliteNameDiffs))
	if opts.has(DetailMetaboliteName) {
		out.metaboliteDiffTable(r.MetaboliteNameDiffs, func(met *model.Metabolite) string { return met.Name })
	}
	out.printf("%d metabolites with different formulas\n", len(r.MetaboliteFormulaDiffs))
	if opts.has(DetailMetaboliteFormula) {
		out.metaboliteDiffTable(r.MetaboliteFormulaDiffs, func(met *model.Metabolite) string { return met.Formula })
	}
	out.printf("%d metabolites with different charges\n", len(r.MetaboliteChargeDiffs))
	if opts.has(DetailMetaboliteCharge) {
		out.metaboliteDiffTable(r.MetaboliteChargeDiffs, formatCharge)
	}
	out.printf("%d metabolites with different compartments\n", len(r.MetaboliteCompartmentDiffs))
	if opts.has(DetailMetaboliteCompartment) {
		out.metaboliteDiffTable(r.MetaboliteCompartmentDiffs, func(met *model.Metabolite) string { return met.Compartment })
	}

	if opts.Boundary {
		out.printf("\n%d reactions are system boundary reactions in %s\n", r.BoundaryInFirst, r.FirstID)
		out.printf("%d reactions are system boundary reactions in %s\n", r.BoundaryInSecond, r.SecondID)
	}
	return out.err
}

func formatCharge(met *model.Metabolite) string {
	if met.Charge == nil {
		return ""
	}
	return strconv.Itoa(*met.Charge)
}

// formatLongString truncates a string for table display.
func formatLongString(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

type reportWriter struct {
	w   io.Writer
	err error
}

func (r *reportWriter) printf(format string, args ...any) {
	if r.err != nil {
		return
	}
	_, r.err = fmt.Fprintf(r.w, format, args...)
}

func (r *reportWriter) table(header []string, rows [][]string) {
	if r.err != nil || len(rows) == 0 {
		return
	}
	tw := tabwriter.NewWriter(r.w, 0, 4, 2, ' ', 0)
	for i, cell := range header {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, cell)
	}
	fmt.Fprintln(tw)
	for _, row := range rows {
		for i, cell := range row {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, cell)
		}
		fmt.Fprintln(tw)
	}
	r.err = tw.Flush()
	r.printf("\n")
}

func (r *reportWriter) reactionTable(rxns []*model.Reaction) {
	rows := make([][]string, len(rxns))
	for i, rxn := range rxns {
		rows[i] = []string{rxn.RID, formatLongString(rxn.Name, 20), rxn.Equation()}
	}
	r.table([]string{"ID", "NAME", "REACTION"}, rows)
}

func (r *reportWriter) metaboliteTable(mets []*model.Metabolite) {
	rows := make([][]string, len(mets))
	for i, met := range mets {
		rows[i] = []string{met.MID, formatLongString(met.Name, 70)}
	}
	r.table([]string{"ID", "NAME"}, rows)
}

func (r *reportWriter) reactionDiffTable(diffs []ReactionDiff, attr func(*model.Reaction) string) {
	rows := make([][]string, len(diffs))
	for i, diff := range diffs {
		rows[i] = []string{diff.First.RID, attr(diff.First), attr(diff.Second)}
	}
	r.table([]string{"ID", "MODEL_1", "MODEL_2"}, rows)
}

func (r *reportWriter) metaboliteDiffTable(diffs []MetaboliteDiff, attr func(*model.Metabolite) string) {
	rows := make([][]string, len(diffs))
	for i, diff := range diffs {
		rows[i] = []string{diff.First.MID, attr(diff.First), attr(diff.Second)}
	}
	r.table([]string{"ID", "MODEL_1", "MODEL_2"}, rows)
}
