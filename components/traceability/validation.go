package traceability

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ProductSchemaName is the resource name of the bundled product schema.
const ProductSchemaName = "product.json"

const productSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["name", "productId", "sustainabilityScore"],
  "properties": {
    "name": {"type": "string", "pattern": "\\S"},
    "productId": {"type": "string", "pattern": "\\S"},
    "harvestDate": {"type": "string"},
    "image": {"type": "string"},
    "sustainabilityScore": {"type": "integer", "minimum": 0, "maximum": 100},
    "certifications": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "required": ["name", "issuer"],
        "properties": {
          "name": {"type": "string", "pattern": "\\S"},
          "issuer": {"type": "string", "pattern": "\\S"}
        }
      }
    }
  }
}`

// ProductValidator reports problems with a product without modifying it.
type ProductValidator interface {
	ValidateProduct(product ProductData) error
}

// SchemaProductValidator validates products against JSON schemas, compiling each
// schema once.
type SchemaProductValidator struct {
	mu       sync.RWMutex
	name     string
	sources  map[string]string
	compiled map[string]*jsonschema.Schema
}

// NewSchemaProductValidator builds a validator using the bundled product schema.
func NewSchemaProductValidator() *SchemaProductValidator {
	return &SchemaProductValidator{
		name:     ProductSchemaName,
		sources:  map[string]string{ProductSchemaName: productSchema},
		compiled: make(map[string]*jsonschema.Schema),
	}
}

// WithSchema replaces the schema used for validation.
func (v *SchemaProductValidator) WithSchema(name, source string) *SchemaProductValidator {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.name = name
	v.sources[name] = source
	delete(v.compiled, name)
	return v
}

// ValidateProduct returns a *ValidationError listing every failing field.
func (v *SchemaProductValidator) ValidateProduct(product ProductData) error {
	schema, err := v.schema()
	if err != nil {
		return err
	}
	data, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("traceability: marshal product %s: %w", product.ProductID, err)
	}
	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("traceability: normalize product %s: %w", product.ProductID, err)
	}
	if err := schema.Validate(payload); err != nil {
		verr, ok := err.(*jsonschema.ValidationError)
		if !ok {
			return fmt.Errorf("traceability: validate product %s: %w", product.ProductID, err)
		}
		return &ValidationError{Fields: fieldErrors(verr)}
	}
	return nil
}

func (v *SchemaProductValidator) schema() (*jsonschema.Schema, error) {
	v.mu.RLock()
	name := v.name
	schema, ok := v.compiled[name]
	source := v.sources[name]
	v.mu.RUnlock()
	if ok {
		return schema, nil
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, strings.NewReader(source)); err != nil {
		return nil, fmt.Errorf("traceability: load schema %s: %w", name, err)
	}
	compiled, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("traceability: compile schema %s: %w", name, err)
	}
	v.mu.Lock()
	v.compiled[name] = compiled
	v.mu.Unlock()
	return compiled, nil
}

// fieldErrors flattens the schema error tree to one entry per failing field.
func fieldErrors(root *jsonschema.ValidationError) []FieldError {
	seen := map[string]string{}
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			field := fieldPath(e.InstanceLocation)
			if _, ok := seen[field]; !ok {
				seen[field] = e.Message
			}
			return
		}
		for _, cause := range e.Causes {
			walk(cause)
		}
	}
	walk(root)
	out := make([]FieldError, 0, len(seen))
	for field, msg := range seen {
		out = append(out, FieldError{Field: field, Message: msg})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

// fieldPath turns a JSON pointer such as /certifications/0/name into
// certifications.0.name.
func fieldPath(pointer string) string {
	trimmed := strings.Trim(pointer, "/")
	if trimmed == "" {
		return "product"
	}
	return strings.ReplaceAll(trimmed, "/", ".")
}

type noopProductValidator struct{}

func (noopProductValidator) ValidateProduct(ProductData) error { return nil }
