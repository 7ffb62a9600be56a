package kernel

import "github.com/cuemby/quilldb/pkg/types"

// InputKind names one of the §4.7 input-matching predicates a
// Signature argument can apply to a candidate type.
type InputKind int

const (
	// Exact requires the candidate type to equal Of exactly.
	Exact InputKind = iota
	// Numeric matches any numeric logical type (§3.1 IsNumeric).
	Numeric
	// Integer matches any signed or unsigned integer type.
	Integer
	// Floating matches FLOAT or DOUBLE.
	Floating
	// AnyOf matches any tag listed in Tags.
	AnyOf
	// Any matches every type, including NA.
	Any
)

// InputType is one argument slot's matcher.
type InputType struct {
	Kind InputKind
	Of   types.ComplexLogicalType // used by Exact
	Tags []types.LogicalType      // used by AnyOf
}

// ExactType builds an Exact InputType.
func ExactType(t types.ComplexLogicalType) InputType { return InputType{Kind: Exact, Of: t} }

// NumericType builds a Numeric InputType.
func NumericType() InputType { return InputType{Kind: Numeric} }

// IntegerType builds an Integer InputType.
func IntegerType() InputType { return InputType{Kind: Integer} }

// FloatingType builds a Floating InputType.
func FloatingType() InputType { return InputType{Kind: Floating} }

// AnyOfType builds an AnyOf InputType over the given tags.
func AnyOfType(tags ...types.LogicalType) InputType { return InputType{Kind: AnyOf, Tags: tags} }

// AnyType builds an Any InputType.
func AnyType() InputType { return InputType{Kind: Any} }

// Matches reports whether candidate satisfies this argument matcher.
func (in InputType) Matches(candidate types.ComplexLogicalType) bool {
	switch in.Kind {
	case Exact:
		return candidate.Equal(in.Of)
	case Numeric:
		return candidate.Tag.IsNumeric()
	case Integer:
		return candidate.Tag.IsInteger()
	case Floating:
		return candidate.Tag.IsFloating()
	case AnyOf:
		for _, tag := range in.Tags {
			if candidate.Tag == tag {
				return true
			}
		}
		return false
	case Any:
		return true
	}
	return false
}

// OutputResolver computes a kernel's output type from its bound
// argument types — e.g. "same as first" or "widest numeric".
type OutputResolver func(inputs []types.ComplexLogicalType) types.ComplexLogicalType

// OutputType is either a fixed type or a resolver function (§4.7).
type OutputType struct {
	Fixed    *types.ComplexLogicalType
	Resolver OutputResolver
}

// FixedOutput builds an OutputType that never depends on the inputs.
func FixedOutput(t types.ComplexLogicalType) OutputType {
	cp := t
	return OutputType{Fixed: &cp}
}

// ResolvedOutput builds an OutputType computed from the bound inputs.
func ResolvedOutput(fn OutputResolver) OutputType {
	return OutputType{Resolver: fn}
}

// Resolve computes the concrete output type given the bound inputs.
func (o OutputType) Resolve(inputs []types.ComplexLogicalType) types.ComplexLogicalType {
	if o.Fixed != nil {
		return *o.Fixed
	}
	return o.Resolver(inputs)
}

// SameAsFirst is a common OutputResolver: the output type matches the
// first argument's type exactly.
func SameAsFirst(inputs []types.ComplexLogicalType) types.ComplexLogicalType {
	return inputs[0]
}

// WidestNumeric is a common OutputResolver: the output type is the
// pairwise-promoted type across all numeric inputs.
func WidestNumeric(inputs []types.ComplexLogicalType) types.ComplexLogicalType {
	best := inputs[0].Tag
	for _, in := range inputs[1:] {
		best = types.PromoteType(best, in.Tag)
	}
	return types.Simple(best)
}

// Signature is a kernel's argument matcher list plus output resolver.
type Signature struct {
	Inputs  []InputType
	Output  OutputType
	Varargs bool // when true, the last Inputs entry repeats for any extra args
}

// MatchesInputs reports whether argTypes satisfies sig, honoring
// Varargs by repeating the final matcher for extra trailing args.
func (sig Signature) MatchesInputs(argTypes []types.ComplexLogicalType) bool {
	if !sig.Varargs && len(argTypes) != len(sig.Inputs) {
		return false
	}
	if sig.Varargs && len(argTypes) < len(sig.Inputs)-1 {
		return false
	}
	for i, t := range argTypes {
		var matcher InputType
		if i < len(sig.Inputs) {
			matcher = sig.Inputs[i]
		} else {
			matcher = sig.Inputs[len(sig.Inputs)-1]
		}
		if !matcher.Matches(t) {
			return false
		}
	}
	return true
}
