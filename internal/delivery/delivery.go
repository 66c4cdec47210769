package delivery

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

const (
	TokenPolicy        = "policy"
	TokenNonNullPolicy = "nonNullPolicy"
	TokenAnotherPolicy = "anotherPolicy"
)

const (
	KeyReferrerPolicy = "referrerPolicy"

	referrerNoReferrer = "no-referrer"
	referrerUnsafeURL  = "unsafe-url"
)

var (
	ErrInvalidToken    = errors.New("policy delivery is invalid")
	ErrInvalidKey      = errors.New("delivery key is invalid")
	ErrNoDeliveryTypes = errors.New("no supported delivery types")
)

type SkipReason string

const (
	SkipNullPolicy      SkipReason = "null-policy"
	SkipUnsupportedType SkipReason = "unsupported-type"
)

// PolicyDelivery is one policy instruction. A nil Value is the JSON null.
type PolicyDelivery struct {
	Type  string
	Key   string
	Value *string
}

// Result is the outcome of resolving a single token. When Skip is set the
// entry does not apply to the current source context and must be omitted.
type Result struct {
	Delivery PolicyDelivery
	Skip     bool
	Reason   SkipReason
}

func New(deliveryType, key string, value *string) PolicyDelivery {
	return PolicyDelivery{Type: deliveryType, Key: key, Value: value}
}

// Str returns a pointer to s, for building non-null values inline.
func Str(s string) *string {
	return &s
}

func (p PolicyDelivery) ValueString() string {
	if p.Value == nil {
		return ""
	}
	return *p.Value
}

func (p PolicyDelivery) Equal(other PolicyDelivery) bool {
	if p.Type != other.Type || p.Key != other.Key {
		return false
	}
	if p.Value == nil || other.Value == nil {
		return p.Value == nil && other.Value == nil
	}
	return *p.Value == *other.Value
}

// Another returns a delivery of the same key with a different value, sent
// through deliveryType.
func (p PolicyDelivery) Another(deliveryType string) (PolicyDelivery, error) {
	switch p.Key {
	case KeyReferrerPolicy:
		if p.Value != nil && *p.Value == referrerNoReferrer {
			return New(deliveryType, p.Key, Str(referrerUnsafeURL)), nil
		}
		return New(deliveryType, p.Key, Str(referrerNoReferrer)), nil
	default:
		return PolicyDelivery{}, fmt.Errorf("%w: %q", ErrInvalidKey, p.Key)
	}
}

func Resolve(token any, target PolicyDelivery, supported []string) (Result, error) {
	var resolved PolicyDelivery

	switch t := token.(type) {
	case string:
		switch t {
		case TokenPolicy:
			resolved = target
		case TokenNonNullPolicy:
			if target.Value == nil {
				return Result{Skip: true, Reason: SkipNullPolicy}, nil
			}
			resolved = target
		case TokenAnotherPolicy:
			if len(supported) == 0 {
				return Result{}, fmt.Errorf("%s: %w", TokenAnotherPolicy, ErrNoDeliveryTypes)
			}
			another, err := target.Another(supported[0])
			if err != nil {
				return Result{}, err
			}
			resolved = another
		default:
			return Result{}, fmt.Errorf("%w: %q", ErrInvalidToken, t)
		}
	case map[string]any:
		literal, err := fromObject(t)
		if err != nil {
			return Result{}, err
		}
		resolved = literal
	default:
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidToken, token)
	}

	if !slices.Contains(supported, resolved.Type) {
		return Result{Delivery: resolved, Skip: true, Reason: SkipUnsupportedType}, nil
	}
	return Result{Delivery: resolved}, nil
}

// ResolveList resolves every token against target. Skipped entries and
// entries resolving to a null value are dropped; survivors keep input order.
func ResolveList(tokens []any, target PolicyDelivery, supported []string) ([]PolicyDelivery, error) {
	out, _, err := resolveList(tokens, target, supported)
	return out, err
}

func resolveList(tokens []any, target PolicyDelivery, supported []string) ([]PolicyDelivery, []Result, error) {
	out := []PolicyDelivery{}
	var skipped []Result
	for i, token := range tokens {
		res, err := Resolve(token, target, supported)
		if err != nil {
			return nil, nil, fmt.Errorf("policyDeliveries[%d]: %w", i, err)
		}
		if res.Skip {
			skipped = append(skipped, res)
			continue
		}
		if res.Delivery.Value == nil {
			skipped = append(skipped, Result{Delivery: res.Delivery, Skip: true, Reason: SkipNullPolicy})
			continue
		}
		out = append(out, res.Delivery)
	}
	return out, skipped, nil
}

func fromObject(obj map[string]any) (PolicyDelivery, error) {
	deliveryType, ok := obj["deliveryType"].(string)
	if !ok {
		return PolicyDelivery{}, fmt.Errorf("%w: deliveryType must be a string", ErrInvalidToken)
	}
	key, ok := obj["key"].(string)
	if !ok {
		return PolicyDelivery{}, fmt.Errorf("%w: key must be a string", ErrInvalidToken)
	}

	var value *string
	switch v := obj["value"].(type) {
	case nil:
	case string:
		value = Str(v)
	default:
		return PolicyDelivery{}, fmt.Errorf("%w: value must be a string or null", ErrInvalidToken)
	}
	return New(deliveryType, key, value), nil
}

func (p PolicyDelivery) ToJSON() map[string]any {
	var value any
	if p.Value != nil {
		value = *p.Value
	}
	return map[string]any{
		"deliveryType": p.Type,
		"key":          p.Key,
		"value":        value,
	}
}

func (p PolicyDelivery) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.ToJSON())
}

func (p *PolicyDelivery) UnmarshalJSON(data []byte) error {
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	parsed, err := fromObject(obj)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
