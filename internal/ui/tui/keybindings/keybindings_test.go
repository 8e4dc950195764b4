package keybindings

import (
	"fmt"
	"testing"
)

func TestNoDuplicateKeyBindings(t *testing.T) {
	// Check each context individually
	for contextName, bindings := range ContextBindings {
		t.Run(fmt.Sprintf("Context_%s", contextName), func(t *testing.T) {
			keyToAction := make(map[string]Action)

			for _, binding := range bindings {
				// Check primary key
				if existingAction, exists := keyToAction[binding.KeyMap.Primary]; exists {
					t.Errorf("Duplicate key binding '%s' in context '%s': "+
						"first assigned to action '%s', then to '%s'",
						binding.KeyMap.Primary, contextName, existingAction, binding.Action)
				} else {
					keyToAction[binding.KeyMap.Primary] = binding.Action
				}

				// Check secondary key if it exists
				if binding.KeyMap.Secondary != "" {
					if existingAction, exists := keyToAction[binding.KeyMap.Secondary]; exists {
						t.Errorf("Duplicate key binding '%s' in context '%s': "+
							"first assigned to action '%s', then to '%s'",
							binding.KeyMap.Secondary, contextName, existingAction, binding.Action)
					} else {
						keyToAction[binding.KeyMap.Secondary] = binding.Action
					}
				}
			}
		})
	}
}

func TestEveryBindingHasHelpText(t *testing.T) {
	for contextName, bindings := range ContextBindings {
		for _, binding := range bindings {
			if binding.KeyMap.Help == "" {
				t.Errorf("Binding for action '%s' in context '%s' has no help text",
					binding.Action, contextName)
			}
			if binding.KeyMap.Primary == "" {
				t.Errorf("Binding for action '%s' in context '%s' has no primary key",
					binding.Action, contextName)
			}
		}
	}
}

func TestDisplayKey(t *testing.T) {
	if got := DisplayKey(" "); got != "space" {
		t.Errorf("DisplayKey(\" \") = %q, want \"space\"", got)
	}
	if got := DisplayKey("ctrl+c"); got != "ctrl+c" {
		t.Errorf("DisplayKey(\"ctrl+c\") = %q, want \"ctrl+c\"", got)
	}
}
