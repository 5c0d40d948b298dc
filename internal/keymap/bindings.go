package keymap

// DefaultBindings returns the default key bindings.
func DefaultBindings() []Binding {
	return []Binding{
		// Global bindings
		{Key: "ctrl+c", Command: "quit", Context: "global"},
		{Key: "?", Command: "toggle-help", Context: "global"},
		{Key: "r", Command: "refresh", Context: "global"},
		{Key: "j", Command: "cursor-down", Context: "global"},
		{Key: "down", Command: "cursor-down", Context: "global"},
		{Key: "k", Command: "cursor-up", Context: "global"},
		{Key: "up", Command: "cursor-up", Context: "global"},
		{Key: "g", Command: "cursor-top", Context: "global"},
		{Key: "G", Command: "cursor-bottom", Context: "global"},
		{Key: "ctrl+d", Command: "page-down", Context: "global"},
		{Key: "ctrl+u", Command: "page-up", Context: "global"},
		{Key: "esc", Command: "back", Context: "global"},

		// Outline context
		{Key: "q", Command: "quit", Context: "outline"},
		{Key: "enter", Command: "add-sibling", Context: "outline"},
		{Key: "tab", Command: "indent", Context: "outline"},
		{Key: "shift+tab", Command: "outdent", Context: "outline"},
		{Key: " ", Command: "toggle-collapse", Context: "outline"},
		{Key: "i", Command: "edit-entry", Context: "outline"},
		{Key: "D", Command: "delete-subtree", Context: "outline"},
		{Key: "y", Command: "yank-text", Context: "outline"},
		{Key: "p", Command: "import-image", Context: "outline"},
		{Key: "b", Command: "bookmark-add", Context: "outline"},
		{Key: "B", Command: "bookmark-list", Context: "outline"},
		{Key: "h", Command: "collapse", Context: "outline"},
		{Key: "left", Command: "collapse", Context: "outline"},
		{Key: "l", Command: "expand", Context: "outline"},
		{Key: "right", Command: "expand", Context: "outline"},

		// Entry editing context
		{Key: "esc", Command: "commit-edit", Context: "edit"},
		{Key: "enter", Command: "commit-edit", Context: "edit"},

		// Delete confirmation context
		{Key: "esc", Command: "cancel", Context: "confirm"},
		{Key: "n", Command: "cancel", Context: "confirm"},
		{Key: "y", Command: "confirm", Context: "confirm"},
		{Key: "enter", Command: "confirm", Context: "confirm"},

		// Bookmark list context
		{Key: "esc", Command: "back", Context: "bookmarks"},
		{Key: "q", Command: "back", Context: "bookmarks"},
		{Key: "enter", Command: "jump", Context: "bookmarks"},
		{Key: "d", Command: "remove-bookmark", Context: "bookmarks"},

		// Help overlay context
		{Key: "esc", Command: "back", Context: "help"},
		{Key: "q", Command: "back", Context: "help"},
	}
}

// RegisterDefaults registers all default bindings with the registry.
func RegisterDefaults(r *Registry) {
	for _, b := range DefaultBindings() {
		r.RegisterBinding(b)
	}
}
