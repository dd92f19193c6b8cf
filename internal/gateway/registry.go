// Package gateway is the single ingress of the platform. It resolves the
// first path segment of a request against a static registry of services and
// forwards the rest of the request to that service.
package gateway

import (
	"fmt"
	"net/url"
	"sort"
)

// Registry maps service names to base addresses. It is built once at start
// and never mutated, so it is safe for concurrent reads.
type Registry struct {
	services map[string]*url.URL
}

func NewRegistry(addrs map[string]string) (*Registry, error) {
	r := &Registry{services: make(map[string]*url.URL, len(addrs))}
	for name, addr := range addrs {
		u, err := url.Parse(addr)
		if err != nil {
			return nil, fmt.Errorf("service %s: %w", name, err)
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("service %s: base address %q must be absolute", name, addr)
		}
		r.services[name] = u
	}
	return r, nil
}

func (r *Registry) Lookup(name string) (*url.URL, bool) {
	u, ok := r.services[name]
	return u, ok
}

// Names returns the registered service names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.services))
	for n := range r.services {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
