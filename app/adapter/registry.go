package adapter

import (
	"github.com/vibast-solutions/ms-go-bounces/app/engine"
)

// Registry tries adapters in order; the first one that recognizes the headers
// and extracts at least one record wins.
type Registry struct {
	adapters []*engine.Adapter
}

func NewRegistry(adapters ...*engine.Adapter) *Registry {
	return &Registry{adapters: append([]*engine.Adapter(nil), adapters...)}
}

// Default returns the built-in adapters with the RFC 3464 fallback last.
func Default() *Registry {
	return NewRegistry(SendGrid(), Aol(), MessageLabs(), MailRu(), Exim(), RFC3464())
}

// With returns a registry that tries extra before the adapters of r.
func (r *Registry) With(extra ...*engine.Adapter) *Registry {
	all := make([]*engine.Adapter, 0, len(extra)+len(r.adapters))
	all = append(all, extra...)
	all = append(all, r.adapters...)
	return &Registry{adapters: all}
}

// Inquire runs every adapter in order until one produces records.
func (r *Registry) Inquire(h engine.Headers, body string) (*engine.Result, bool) {
	for _, a := range r.adapters {
		if res, ok := a.Inquire(h, body); ok {
			return res, true
		}
	}
	return nil, false
}

// Lookup returns the adapter registered under name.
func (r *Registry) Lookup(name string) (*engine.Adapter, bool) {
	for _, a := range r.adapters {
		if a.Name == name {
			return a, true
		}
	}
	return nil, false
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.adapters))
	for _, a := range r.adapters {
		names = append(names, a.Name)
	}
	return names
}
