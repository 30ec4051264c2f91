package llm

import "fmt"

// Catalog is the immutable set of provider credentials read at startup.
// It hands out Selectors and is safe to share between goroutines.
type Catalog struct {
	settings map[Kind]Credentials
	factory  Factory
}

func NewCatalog(settings map[Kind]Credentials, factory Factory) *Catalog {
	if factory == nil {
		factory = NewProvider
	}
	copied := make(map[Kind]Credentials, len(settings))
	for k, v := range settings {
		copied[k] = v
	}
	return &Catalog{settings: copied, factory: factory}
}

// Configured reports whether kind has credentials in the catalog.
func (c *Catalog) Configured(kind Kind) bool {
	creds, ok := c.settings[kind]
	return ok && creds.APIKey != ""
}

// NewSelector returns a selector already switched to initial.
func (c *Catalog) NewSelector(initial Kind) (*Selector, error) {
	s := &Selector{catalog: c}
	if err := s.Switch(initial); err != nil {
		return nil, err
	}
	return s, nil
}

// Selector holds the active provider for one analysis call. It is not safe
// for concurrent use; every call gets its own.
type Selector struct {
	catalog *Catalog
	kind    Kind
	active  Provider
}

// Switch binds kind, building a new client from that kind's credentials.
// The previous client is dropped.
func (s *Selector) Switch(kind Kind) error {
	creds, ok := s.catalog.settings[kind]
	if !ok {
		return &UnsupportedProviderError{Kind: kind, Reason: "not configured"}
	}

	provider, err := s.catalog.factory(kind, creds)
	if err != nil {
		return err
	}
	if provider == nil {
		return fmt.Errorf("llm: factory returned no client for %q", kind)
	}

	s.kind = kind
	s.active = provider
	return nil
}

func (s *Selector) Active() Provider {
	return s.active
}

func (s *Selector) ActiveKind() Kind {
	return s.kind
}
