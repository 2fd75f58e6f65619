// Package source decides where a track's audio is fetched from when the
// server has to hand it out itself (downloads, duration probing).
package source

import (
	"errors"
	"net/url"
	"strings"
)

var ErrUnsupported = errors.New("unsupported media url")

// Location is a resolved track URL. ObjectPath is set when the audio lives in
// local object storage; otherwise URL is fetched by the client.
type Location struct {
	Resolver   string `json:"resolver"`
	URL        string `json:"url"`
	ObjectPath string `json:"object_path,omitempty"`
}

// Local reports whether the audio is served from object storage.
func (l Location) Local() bool {
	return l.ObjectPath != ""
}

// Resolver handles one family of URLs.
type Resolver interface {
	// Name returns the resolver name (e.g., "storage", "remote").
	Name() string

	// CanHandle returns true if this resolver understands raw.
	CanHandle(raw string) bool

	Resolve(raw string) (Location, error)
}

// Registry tries resolvers in registration order.
type Registry struct {
	resolvers []Resolver
}

func NewRegistry(resolvers ...Resolver) *Registry {
	return &Registry{resolvers: resolvers}
}

func (r *Registry) Register(res Resolver) {
	r.resolvers = append(r.resolvers, res)
}

// Find returns the first resolver that can handle raw, or nil.
func (r *Registry) Find(raw string) Resolver {
	for _, res := range r.resolvers {
		if res.CanHandle(raw) {
			return res
		}
	}
	return nil
}

// ByName finds a resolver by name.
func (r *Registry) ByName(name string) Resolver {
	for _, res := range r.resolvers {
		if res.Name() == name {
			return res
		}
	}
	return nil
}

// Names lists the registered resolvers.
func (r *Registry) Names() []string {
	names := make([]string, len(r.resolvers))
	for i, res := range r.resolvers {
		names[i] = res.Name()
	}
	return names
}

// Resolve resolves raw with the first matching resolver.
func (r *Registry) Resolve(raw string) (Location, error) {
	raw = strings.TrimSpace(raw)
	res := r.Find(raw)
	if res == nil {
		return Location{}, ErrUnsupported
	}
	return res.Resolve(raw)
}

// ObjectPaths maps public URLs back to object paths.
type ObjectPaths interface {
	PathFromURL(raw string) (string, bool)
}

// Storage resolves URLs that point at this site's object storage.
type Storage struct {
	Objects ObjectPaths
}

func (Storage) Name() string { return "storage" }

func (s Storage) CanHandle(raw string) bool {
	_, ok := s.Objects.PathFromURL(raw)
	return ok
}

func (s Storage) Resolve(raw string) (Location, error) {
	p, ok := s.Objects.PathFromURL(raw)
	if !ok {
		return Location{}, ErrUnsupported
	}
	return Location{Resolver: s.Name(), URL: raw, ObjectPath: p}, nil
}

// Remote accepts any absolute http(s) URL.
type Remote struct{}

func (Remote) Name() string { return "remote" }

func (Remote) CanHandle(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func (r Remote) Resolve(raw string) (Location, error) {
	if !r.CanHandle(raw) {
		return Location{}, ErrUnsupported
	}
	return Location{Resolver: r.Name(), URL: raw}, nil
}
