package spec

import (
	"github.com/wptgen/wptgen/internal/config"
	"github.com/wptgen/wptgen/internal/delivery"
)

const (
	ExpansionDefault  = "default"
	ExpansionOverride = "override"
)

type Spec struct {
	DeliveryTypeSchema      delivery.DeliveryTypeSchema  `json:"delivery_type_schema"`
	SourceContextListSchema map[string]SourceContextList `json:"source_context_list_schema"`
	Specification           []Scenario                   `json:"specification"`
	ExcludedTests           []string                     `json:"excluded_tests"`

	path string
}

type SourceContextList struct {
	Description       string                       `json:"description"`
	SourceContextList []delivery.SourceContextSpec `json:"sourceContextList"`
}

type Scenario struct {
	Name              string                    `json:"name"`
	Title             string                    `json:"title"`
	Description       string                    `json:"description"`
	PolicyDeliveries  []delivery.PolicyDelivery `json:"policy_deliveries"`
	SourceContextList []string                  `json:"source_context_list"`
	Expansion         string                    `json:"expansion"`
}

func (s *Spec) Path() string {
	return s.path
}

func (s *Spec) Excluded(name string) bool {
	for _, excluded := range s.ExcludedTests {
		if excluded == name {
			return true
		}
	}
	return false
}

// Check cross-references scenarios, source context lists and the delivery
// type schema. It does not validate the document against a JSON schema.
func (s *Spec) Check() error {
	v := &config.ValidationError{}

	if len(s.DeliveryTypeSchema.SourceContext) == 0 {
		v.Add("delivery_type_schema.source_context is required")
	}
	for ctxType, types := range s.DeliveryTypeSchema.SourceContext {
		if len(types) == 0 {
			v.Add("delivery_type_schema.source_context.%s has no delivery types", ctxType)
		}
	}

	for name, list := range s.SourceContextListSchema {
		for i, obj := range list.SourceContextList {
			if obj.SourceContextType == "" {
				v.Add("source_context_list_schema.%s.sourceContextList[%d].sourceContextType is required", name, i)
				continue
			}
			if _, ok := s.DeliveryTypeSchema.Supported(obj.SourceContextType); !ok {
				v.Add("source_context_list_schema.%s.sourceContextList[%d].sourceContextType %q is unknown", name, i, obj.SourceContextType)
			}
		}
	}

	names := map[string]struct{}{}
	for i, scenario := range s.Specification {
		if scenario.Name == "" {
			v.Add("specification[%d].name is required", i)
		} else if _, exists := names[scenario.Name]; exists {
			v.Add("specification[%d].name %q is duplicated", i, scenario.Name)
		} else {
			names[scenario.Name] = struct{}{}
		}

		switch scenario.Expansion {
		case "", ExpansionDefault, ExpansionOverride:
		default:
			v.Add("specification[%d].expansion must be default|override", i)
		}

		if len(scenario.PolicyDeliveries) == 0 {
			v.Add("specification[%d].policy_deliveries is required", i)
		}
		if len(scenario.SourceContextList) == 0 {
			v.Add("specification[%d].source_context_list is required", i)
		}
		for _, listName := range scenario.SourceContextList {
			if _, ok := s.SourceContextListSchema[listName]; !ok {
				v.Add("specification[%d].source_context_list %q does not exist", i, listName)
			}
		}
	}

	if len(v.Problems) > 0 {
		v.Sort()
		return v
	}
	return nil
}
