package provider

import "fmt"

// Registry resolves the configured backend name to its Provider
// implementation. It is populated once at startup from config and
// held as the one intentionally-global piece of dispatch state, per
// the single-process concurrency model.
type Registry struct {
	backends map[string]Provider
	active   string
}

func NewRegistry(active string) *Registry {
	return &Registry{backends: make(map[string]Provider), active: active}
}

func (r *Registry) Register(name string, p Provider) {
	r.backends[name] = p
}

// Active returns the currently configured outbound backend.
func (r *Registry) Active() (Provider, error) {
	p, ok := r.backends[r.active]
	if !ok {
		return nil, fmt.Errorf("provider: no backend registered for %q", r.active)
	}
	return p, nil
}

// ActiveName reports the configured backend's name, used to stamp
// models.Job.Backend at submit time.
func (r *Registry) ActiveName() string {
	return r.active
}

// ByName looks up a specific backend regardless of which is active,
// for webhook routes that are backend-specific (e.g. /phaxio-callback
// always needs the phaxio provider even if SIP is the active send
// backend).
func (r *Registry) ByName(name string) (Provider, error) {
	p, ok := r.backends[name]
	if !ok {
		return nil, fmt.Errorf("provider: no backend registered for %q", name)
	}
	return p, nil
}
