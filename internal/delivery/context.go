package delivery

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrUnknownSourceContext = errors.New("unknown source context type")

// DeliveryTypeSchema maps a source context type to the delivery types it
// supports. The first entry is the one used for "anotherPolicy".
type DeliveryTypeSchema struct {
	SourceContext map[string][]string `json:"source_context"`
}

func (s DeliveryTypeSchema) Supported(sourceContextType string) ([]string, bool) {
	types, ok := s.SourceContext[sourceContextType]
	return types, ok
}

// SourceContextSpec is the unexpanded form found in a spec file.
type SourceContextSpec struct {
	SourceContextType string `json:"sourceContextType"`
	PolicyDeliveries  []any  `json:"policyDeliveries"`
}

type SourceContext struct {
	Type             string
	PolicyDeliveries []PolicyDelivery
}

// Expansion carries a source context together with the entries dropped
// while resolving it.
type Expansion struct {
	Context SourceContext
	Skipped []Result
}

func FromSpec(obj SourceContextSpec, target PolicyDelivery, schema DeliveryTypeSchema) (SourceContext, error) {
	exp, err := Expand(obj, target, schema)
	if err != nil {
		return SourceContext{}, err
	}
	return exp.Context, nil
}

func Expand(obj SourceContextSpec, target PolicyDelivery, schema DeliveryTypeSchema) (Expansion, error) {
	supported, ok := schema.Supported(obj.SourceContextType)
	if !ok {
		return Expansion{}, fmt.Errorf("%w: %q", ErrUnknownSourceContext, obj.SourceContextType)
	}

	deliveries, skipped, err := resolveList(obj.PolicyDeliveries, target, supported)
	if err != nil {
		return Expansion{}, fmt.Errorf("source context %s: %w", obj.SourceContextType, err)
	}

	return Expansion{
		Context: SourceContext{Type: obj.SourceContextType, PolicyDeliveries: deliveries},
		Skipped: skipped,
	}, nil
}

func ExpandList(objs []SourceContextSpec, target PolicyDelivery, schema DeliveryTypeSchema) ([]Expansion, error) {
	out := make([]Expansion, 0, len(objs))
	for i, obj := range objs {
		exp, err := Expand(obj, target, schema)
		if err != nil {
			return nil, fmt.Errorf("sourceContextList[%d]: %w", i, err)
		}
		out = append(out, exp)
	}
	return out, nil
}

func Contexts(expansions []Expansion) []SourceContext {
	out := make([]SourceContext, 0, len(expansions))
	for _, exp := range expansions {
		out = append(out, exp.Context)
	}
	return out
}

func (c SourceContext) ToJSON() map[string]any {
	deliveries := make([]map[string]any, 0, len(c.PolicyDeliveries))
	for _, d := range c.PolicyDeliveries {
		deliveries = append(deliveries, d.ToJSON())
	}
	return map[string]any{
		"sourceContextType": c.Type,
		"policyDeliveries":  deliveries,
	}
}

func (c SourceContext) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.ToJSON())
}
