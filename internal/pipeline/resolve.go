package pipeline

import "strings"

const (
	addressSeparator = "@"
	variantSeparator = "-"
)

// Address joins a stage name and a variant into the stage@variant form dvc
// uses for generated stages. Neither part is escaped.
func Address(stage, variant string) string {
	return stage + addressSeparator + variant
}

// ResolveMatrixNames returns one address per combination of axis values.
// Axes are combined in declaration order with the last axis varying fastest,
// so {model:[cnn,xgb], feature:[f1,f2]} yields cnn-f1, cnn-f2, xgb-f1, xgb-f2.
func ResolveMatrixNames(stage string, axes Axes) []string {
	if len(axes) == 0 {
		return []string{}
	}

	combos := [][]string{{}}
	for _, axis := range axes {
		next := make([][]string, 0, len(combos)*len(axis.Values))
		for _, combo := range combos {
			for _, v := range axis.Values {
				extended := make([]string, len(combo), len(combo)+1)
				copy(extended, combo)
				next = append(next, append(extended, v))
			}
		}
		combos = next
	}

	names := make([]string, 0, len(combos))
	for _, combo := range combos {
		names = append(names, Address(stage, strings.Join(combo, variantSeparator)))
	}
	return names
}

// ResolveForeachNames maps each item to its address, keeping input order and
// duplicates.
func ResolveForeachNames(stage string, items []string) []string {
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, Address(stage, item))
	}
	return names
}

// SubStageNames returns the addresses a stage expands to. Simple stages, and
// matrix stages without usable axes, address themselves.
func SubStageNames(s Stage) []string {
	switch {
	case s.Type == TypeMatrix && s.Matrix != nil:
		return ResolveMatrixNames(s.Name, s.Matrix)
	case s.Type == TypeForeach && s.Foreach != nil:
		return ResolveForeachNames(s.Name, s.Foreach)
	}
	return []string{s.Name}
}
