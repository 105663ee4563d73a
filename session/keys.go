package session

import (
	"sort"

	"email-designer/composer"
)

// Action is what a keyboard shortcut triggers.
type Action string

const (
	ActionSave           Action = "save"
	ActionExportDownload Action = "export-download"
)

// Keymap maps key combinations (composer.KeyEvent.Combo form) to actions.
type Keymap map[string]Action

// DefaultKeymap binds modifier+s to save and modifier+e to export, where the
// modifier is ctrl or meta (cmd on macOS).
func DefaultKeymap() Keymap {
	return Keymap{
		"ctrl+s": ActionSave,
		"meta+s": ActionSave,
		"ctrl+e": ActionExportDownload,
		"meta+e": ActionExportDownload,
	}
}

// Lookup returns the action bound to ev.
func (k Keymap) Lookup(ev composer.KeyEvent) (Action, bool) {
	a, ok := k[ev.Combo()]
	return a, ok
}

// Combos lists the bound combinations, sorted.
func (k Keymap) Combos() []string {
	combos := make([]string, 0, len(k))
	for c := range k {
		combos = append(combos, c)
	}
	sort.Strings(combos)
	return combos
}
