package effectsrt

import (
	"fmt"
	"sync"
)

// Registry holds every loaded ScriptDefinition, keyed by card number. It is
// the runtime analog of effects/contract's Registry: a flat collection that
// must be validated before use and is read-only once loaded.
type Registry struct {
	mu      sync.RWMutex
	scripts map[string]ScriptDefinition
}

// NewRegistry constructs an empty script registry.
func NewRegistry() *Registry {
	return &Registry{scripts: make(map[string]ScriptDefinition)}
}

// Load adds a ScriptDefinition to the registry, replacing any prior
// definition for the same card number.
func (r *Registry) Load(def ScriptDefinition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scripts[def.CardNumber] = def
}

// Lookup returns the script for a card number, if one is registered. Cards
// with no script (vanilla cards) simply have no entry; this is not an
// error condition.
func (r *Registry) Lookup(cardNumber string) (ScriptDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.scripts[cardNumber]
	return def, ok
}

// Validate checks structural invariants across every loaded script: every
// PENDING_* action carries a candidate Filter with a Zone set, every
// CONDITIONAL_ACTION carries a condition, and no hook is empty.
func (r *Registry) Validate() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for cardNumber, def := range r.scripts {
		if def.CardNumber != cardNumber {
			return fmt.Errorf("script %s: CardNumber field %q does not match registry key", cardNumber, def.CardNumber)
		}
		for trigger, hook := range def.Hooks {
			if len(hook.Actions) == 0 {
				return fmt.Errorf("script %s: hook %s has no actions", cardNumber, trigger)
			}
			if err := validateActions(cardNumber, string(trigger), hook.Actions); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateActions(cardNumber, context string, actions []Action) error {
	for _, a := range actions {
		if a.Kind.IsPending() && a.Filter.Zone == "" {
			return fmt.Errorf("script %s: %s: %s action missing candidate filter zone", cardNumber, context, a.Kind)
		}
		switch a.Kind {
		case ActionConditional:
			if a.Condition == nil {
				return fmt.Errorf("script %s: %s: CONDITIONAL_ACTION missing condition", cardNumber, context)
			}
			if err := validateActions(cardNumber, context+"/then", a.Then); err != nil {
				return err
			}
			if err := validateActions(cardNumber, context+"/else", a.Else); err != nil {
				return err
			}
		}
		if a.Kind.IsPending() {
			if err := validateActions(cardNumber, context+"/then", a.Then); err != nil {
				return err
			}
		}
	}
	return nil
}
