// Package keymap maps key presses to named commands per UI context,
// with user overrides layered on top of the defaults.
package keymap

// Binding ties one key to a command within a context. The "global"
// context is consulted when the active context has no binding.
type Binding struct {
	Key     string
	Command string
	Context string
}

// Registry resolves keys to commands. Later registrations win, which is
// how user overrides replace defaults.
type Registry struct {
	byContext map[string]map[string]string // context -> key -> command
	order     []Binding
}

func NewRegistry() *Registry {
	return &Registry{byContext: make(map[string]map[string]string)}
}

// RegisterBinding adds or replaces a binding.
func (r *Registry) RegisterBinding(b Binding) {
	if b.Context == "" {
		b.Context = "global"
	}
	keys, ok := r.byContext[b.Context]
	if !ok {
		keys = make(map[string]string)
		r.byContext[b.Context] = keys
	}
	keys[b.Key] = b.Command
	r.order = append(r.order, b)
}

// ApplyOverrides rebinds commands to new keys in every context that has
// them. The overrides map is command -> key, matching the config file.
func (r *Registry) ApplyOverrides(overrides map[string]string) {
	for command, key := range overrides {
		for context, keys := range r.byContext {
			for oldKey, cmd := range keys {
				if cmd == command {
					delete(keys, oldKey)
					r.RegisterBinding(Binding{Key: key, Command: command, Context: context})
				}
			}
		}
	}
}

// Lookup resolves a key in the given context, falling back to the
// global context.
func (r *Registry) Lookup(context, key string) (string, bool) {
	if keys, ok := r.byContext[context]; ok {
		if cmd, ok := keys[key]; ok {
			return cmd, true
		}
	}
	if context != "global" {
		if keys, ok := r.byContext["global"]; ok {
			if cmd, ok := keys[key]; ok {
				return cmd, true
			}
		}
	}
	return "", false
}

// BindingsFor returns the bindings visible in a context, in
// registration order, for help rendering. Shadowed bindings are
// skipped.
func (r *Registry) BindingsFor(context string) []Binding {
	var out []Binding
	seen := make(map[string]bool)
	for i := len(r.order) - 1; i >= 0; i-- {
		b := r.order[i]
		if b.Context != context && b.Context != "global" {
			continue
		}
		if seen[b.Key] {
			continue
		}
		if cmd, ok := r.Lookup(context, b.Key); !ok || cmd != b.Command {
			continue
		}
		seen[b.Key] = true
		out = append(out, b)
	}
	// Reverse back to registration order.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
