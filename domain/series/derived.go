package series

import (
	"strings"
)

// Derived operation names.
const (
	OpDiff  = "DIFF"
	OpRatio = "RATIO"
)

// DerivedSpec describes one derived curve: two component token lists, each a
// restriction on series-variable values, and the algebraic operation that
// combines them.
type DerivedSpec struct {
	First     []string
	Second    []string
	Operation string
}

// ParseDerivedSpec builds a spec from a configuration triple: two
// space-separated component strings and the operation.
func ParseDerivedSpec(first, second, operation string) DerivedSpec {
	return DerivedSpec{
		First:     strings.Fields(first),
		Second:    strings.Fields(second),
		Operation: strings.ToUpper(strings.TrimSpace(operation)),
	}
}

// KnownOperation reports whether the operation is supported.
func (d DerivedSpec) KnownOperation() bool {
	return d.Operation == OpDiff || d.Operation == OpRatio
}

// Name synthesizes the derived curve name, e.g. "DIFF(GFS TMP RMSE-NAM TMP RMSE)".
func (d DerivedSpec) Name() string {
	return d.Operation + "(" + strings.Join(d.First, " ") + "-" + strings.Join(d.Second, " ") + ")"
}

// ComponentTokens returns the candidate token sets for both components of a
// derived series: the component's own tokens plus the shared suffix (the
// independent value and the statistic name), deduplicated.
func (d DerivedSpec) ComponentTokens(suffix []string) (first, second map[string]struct{}) {
	return tokenSet(d.First, suffix), tokenSet(d.Second, suffix)
}

func tokenSet(tokens, suffix []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens)+len(suffix))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	for _, t := range suffix {
		set[t] = struct{}{}
	}
	return set
}

// IsDerivedName reports whether a series field carries a synthesized derived
// curve name rather than a plain value.
func IsDerivedName(field string) bool {
	open := strings.Index(field, "(")
	return open > 0 && strings.HasSuffix(field, ")")
}

// Apply combines two component values with the operation. A nil operand, an
// unknown operation or a zero ratio denominator yields nil.
func (d DerivedSpec) Apply(a, b *float64) *float64 {
	if a == nil || b == nil {
		return nil
	}
	switch d.Operation {
	case OpDiff:
		v := *a - *b
		return &v
	case OpRatio:
		if *b == 0 {
			return nil
		}
		v := *a / *b
		return &v
	default:
		return nil
	}
}
