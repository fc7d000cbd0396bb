package fields

import (
	"github.com/google/uuid"

	"github.com/smartcontractkit/chainlink-common/pkg/logger"

	"github.com/chainforms/contract-framework/codec"
	"github.com/chainforms/contract-framework/schema"
)

// Bounds are host-safe numeric limits for one fixed-width integer type.
type Bounds struct {
	Min int64
	Max int64
}

// BoundsFunc looks up the numeric bounds for a native type string. It must
// decline (ok=false) for any width whose magnitude can exceed the host's
// safe-integer range.
type BoundsFunc func(typ string) (Bounds, bool)

// VariantsFunc supplies variant metadata for enum-shaped native types.
type VariantsFunc func(typ string) []schema.EnumVariantMetadata

// Generator builds default form field descriptors for function parameters
// using an ecosystem's mapper, bounds table and enum registry.
type Generator struct {
	mapper   *Mapper
	bounds   BoundsFunc
	variants VariantsFunc
	lggr     logger.SugaredLogger
	diag     codec.Diagnostics
}

func NewGenerator(lggr logger.Logger, mapper *Mapper, bounds BoundsFunc, variants VariantsFunc, diag codec.Diagnostics) *Generator {
	if bounds == nil {
		bounds = func(string) (Bounds, bool) { return Bounds{}, false }
	}
	if variants == nil {
		variants = func(string) []schema.EnumVariantMetadata { return nil }
	}
	if diag == nil {
		diag = codec.NopDiagnostics{}
	}
	return &Generator{
		mapper:   mapper,
		bounds:   bounds,
		variants: variants,
		lggr:     logger.Sugared(lggr).Named("FieldGenerator"),
		diag:     diag,
	}
}

// FieldsFor derives one form field per input parameter of a function.
func (g *Generator) FieldsFor(fn schema.ContractFunction) []FormField {
	out := make([]FormField, len(fn.Inputs))
	for i, p := range fn.Inputs {
		out[i] = g.FieldFor(p)
	}
	return out
}

// FieldFor builds the default form field descriptor for one parameter. It
// never fails: an unrecognized native type yields a usable text field and an
// observable diagnostic.
func (g *Generator) FieldFor(param schema.FunctionParameter) FormField {
	res, known := g.mapper.Resolve(param.Type)
	if !known {
		g.lggr.Warnw("Unrecognized parameter type, falling back to text field", "name", param.Name, "type", param.Type)
		g.diag.UnknownType(param.Name, param.Type, nil)
	}

	name := param.Name
	if name == "" {
		name = param.Type
	}

	f := FormField{
		ID:          uuid.NewString(),
		Name:        name,
		Label:       schema.HumanizeName(name),
		Type:        res.Type,
		NativeType:  param.Type,
		Default:     defaultFor(res.Type),
		Validation:  Validation{Required: true},
		Description: param.Description,
	}

	switch res.Type {
	case FieldArray:
		elemRes, _ := g.mapper.Resolve(res.ElementType)
		elem := &ElementConfig{
			Type:       elemRes.Type,
			NativeType: res.ElementType,
			Validation: Validation{Required: true},
		}
		g.attachBounds(&elem.Validation, res.ElementType)
		f.Element = elem
	case FieldObject, FieldArrayObject:
		f.Components = param.Components
	case FieldEnum:
		f.EnumVariants = g.variants(param.Type)
	}

	g.attachBounds(&f.Validation, param.Type)
	return f
}

// attachBounds sets min/max only when the bounds table vouches for the type.
// Types wider than the safe-integer range never receive native bounds.
func (g *Generator) attachBounds(v *Validation, typ string) {
	b, ok := g.bounds(typ)
	if !ok {
		return
	}
	minV, maxV := b.Min, b.Max
	v.Min = &minV
	v.Max = &maxV
}

func defaultFor(ft FieldType) any {
	switch ft {
	case FieldCheckbox:
		return false
	case FieldNumber:
		return 0
	case FieldBigInt:
		return "0"
	default:
		return ""
	}
}
