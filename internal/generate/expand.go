package generate

import (
	"fmt"
	"strings"

	"github.com/wptgen/wptgen/internal/delivery"
	"github.com/wptgen/wptgen/internal/spec"
)

type TestCase struct {
	Name                 string
	Scenario             string
	Title                string
	Description          string
	SourceContextListKey string
	TargetPolicyDelivery delivery.PolicyDelivery
	Expansions           []delivery.Expansion
	Overridden           bool
}

func (tc TestCase) SourceContextList() []delivery.SourceContext {
	return delivery.Contexts(tc.Expansions)
}

func (tc TestCase) ToJSON() map[string]any {
	contexts := make([]map[string]any, 0, len(tc.Expansions))
	for _, exp := range tc.Expansions {
		contexts = append(contexts, exp.Context.ToJSON())
	}
	return map[string]any{
		"name":                 tc.Name,
		"scenario":             tc.Scenario,
		"title":                tc.Title,
		"description":          tc.Description,
		"targetPolicyDelivery": tc.TargetPolicyDelivery.ToJSON(),
		"sourceContextList":    contexts,
	}
}

// Expand produces one test case per target policy delivery and source
// context list of every scenario that is not excluded. Case names do not
// include the scenario, so a later scenario with "override" expansion
// replaces cases produced earlier; any other collision is an error.
func Expand(s *spec.Spec) ([]TestCase, error) {
	var cases []TestCase
	index := map[string]int{}

	for _, scenario := range s.Specification {
		if s.Excluded(scenario.Name) {
			continue
		}
		for _, listName := range scenario.SourceContextList {
			list, ok := s.SourceContextListSchema[listName]
			if !ok {
				return nil, fmt.Errorf("scenario %s: source context list %q does not exist", scenario.Name, listName)
			}
			for _, target := range scenario.PolicyDeliveries {
				expansions, err := delivery.ExpandList(list.SourceContextList, target, s.DeliveryTypeSchema)
				if err != nil {
					return nil, fmt.Errorf("scenario %s, list %s: %w", scenario.Name, listName, err)
				}

				tc := TestCase{
					Name:                 CaseName(listName, target),
					Scenario:             scenario.Name,
					Title:                scenario.Title,
					Description:          scenario.Description,
					SourceContextListKey: listName,
					TargetPolicyDelivery: target,
					Expansions:           expansions,
				}

				if i, exists := index[tc.Name]; exists {
					if scenario.Expansion != spec.ExpansionOverride {
						return nil, fmt.Errorf("scenario %s: test case %s already generated by %s", scenario.Name, tc.Name, cases[i].Scenario)
					}
					tc.Overridden = true
					cases[i] = tc
					continue
				}
				index[tc.Name] = len(cases)
				cases = append(cases, tc)
			}
		}
	}
	return cases, nil
}

// CaseName is <list>.<deliveryType>.<value>. A null value is "_unset" and
// an empty one "_empty"; any other byte outside [A-Za-z0-9-] is written as
// _xx in hex, so distinct inputs never share a name.
func CaseName(listName string, target delivery.PolicyDelivery) string {
	value := "_unset"
	if target.Value != nil {
		value = escapeName(*target.Value)
	}
	return strings.Join([]string{escapeName(listName), escapeName(target.Type), value}, ".")
}

func escapeName(s string) string {
	if s == "" {
		return "_empty"
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-':
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "_%02x", c)
		}
	}
	return b.String()
}
