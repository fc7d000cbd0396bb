// Package fields maps native parameter types to UI field types and derives
// default form field descriptors from canonical schema parameters.
package fields

import (
	"github.com/chainforms/contract-framework/schema"
)

// FieldType is the enumerated UI input-widget category a parameter renders as.
type FieldType string

const (
	FieldText        FieldType = "text"
	FieldTextArea    FieldType = "textarea"
	FieldNumber      FieldType = "number"
	FieldBigInt      FieldType = "bigint"
	FieldCheckbox    FieldType = "checkbox"
	FieldAddress     FieldType = "blockchain-address"
	FieldBytes       FieldType = "bytes"
	FieldArray       FieldType = "array"
	FieldObject      FieldType = "object"
	FieldArrayObject FieldType = "array-object"
	FieldEnum        FieldType = "enum"
	FieldMap         FieldType = "map"
)

// Validation holds the constraints attached to one form field. Min/Max are
// only ever set for fixed-width integer types that stay within the host's
// safe-integer range; wider types carry no native numeric bounds.
type Validation struct {
	Required bool   `json:"required"`
	Min      *int64 `json:"min,omitempty"`
	Max      *int64 `json:"max,omitempty"`
}

// ElementConfig describes the element type of an array-typed field.
type ElementConfig struct {
	Type       FieldType  `json:"type"`
	NativeType string     `json:"nativeType"`
	Validation Validation `json:"validation"`
}

// FormField is one derived UI field. It is generated once from a
// FunctionParameter and may be hand-edited downstream; it is a starting
// point, not the schema.
type FormField struct {
	ID           string                       `json:"id"`
	Name         string                       `json:"name"`
	Label        string                       `json:"label"`
	Type         FieldType                    `json:"type"`
	NativeType   string                       `json:"nativeType"`
	Default      any                          `json:"default"`
	Validation   Validation                   `json:"validation"`
	Element      *ElementConfig               `json:"element,omitempty"`
	Components   []schema.FunctionParameter   `json:"components,omitempty"`
	EnumVariants []schema.EnumVariantMetadata `json:"enumVariants,omitempty"`
	Description  string                       `json:"description,omitempty"`
}
