package skill

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/parley/pkg/domain"
)

// FirstString resolves a multi-valued entity to its first value, trying the
// given keys in order. NLU engines report entities as a bare string or as a
// list of alternatives; either way the first match wins.
func FirstString(entities map[string]any, keys ...string) (string, bool) {
	for _, key := range keys {
		raw, ok := entities[key]
		if !ok {
			continue
		}
		switch v := raw.(type) {
		case string:
			if v != "" {
				return v, true
			}
		case []string:
			if len(v) > 0 && v[0] != "" {
				return v[0], true
			}
		case []any:
			if len(v) > 0 {
				if s, ok := v[0].(string); ok && s != "" {
					return s, true
				}
			}
		}
	}
	return "", false
}

// Decode maps raw entities onto a typed struct with weak conversions, so
// "3" fills an int field and a single string fills a string field. A failed
// decode reports an error but out keeps every field decoded before the
// failure; callers log and proceed with what was salvaged.
func Decode(entities map[string]any, out any) error {
	if err := mapstructure.WeakDecode(entities, out); err != nil {
		return fmt.Errorf("digesting entities: %w", err)
	}
	return nil
}

// MergeEvent copies a programmatic event payload into the state's slots.
// Only map payloads carry slot values; anything else is ignored.
func MergeEvent(state *domain.State, payload any) {
	values, ok := payload.(map[string]any)
	if !ok {
		return
	}
	if state.Slots == nil {
		state.Slots = make(map[string]any, len(values))
	}
	for k, v := range values {
		state.Slots[k] = v
	}
}
