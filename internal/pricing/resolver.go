// Package pricing implements the costing pipeline for pre-quotation
// documents: specification-driven price modifiers, per-line cost/price
// reconciliation, document rollups, and a heuristic cost estimator used
// when no explicit cost has been entered.
//
// All functions are pure: same inputs, same outputs, no hidden state.
// Monetary values are rounded to 2 decimal places at every assignment
// boundary, matching the historical figures stored by the workflow.
package pricing

// Spec is a single specification definition of a catalog item as seen by
// the resolver: an ordered list of selectable option labels and a parallel
// list of percentage modifiers. The modifier list may be shorter than the
// option list; positions past its end contribute nothing.
type Spec struct {
	Name      string
	Options   []string
	Modifiers []float64
}

// ResolveModifier computes the aggregate percentage modifier for a set of
// selected options. Modifiers stack additively across specifications, so the
// result is independent of specification order. A selection whose label is
// not among the options, or whose option has no matching modifier entry,
// contributes zero rather than failing; tolerating sparse reference data is
// deliberate.
//
// Matching is case-sensitive with no normalization; the first exact match
// wins when option labels are duplicated.
func ResolveModifier(specs []Spec, selections map[string]string) float64 {
	total := 0.0

	for _, spec := range specs {
		selected, ok := selections[spec.Name]
		if !ok {
			continue
		}

		for i, option := range spec.Options {
			if option != selected {
				continue
			}
			if i < len(spec.Modifiers) {
				total += spec.Modifiers[i]
			}
			break
		}
	}

	return total
}
