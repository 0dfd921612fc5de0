package adapter

import "sort"

// Catalog indexes known adapters by name so configuration can refer to them
// without constructing them.
type Catalog map[string]EngineAdapter

// NewCatalog indexes adapters by their normalized name. Later adapters win on
// duplicate names.
func NewCatalog(adapters ...EngineAdapter) Catalog {
	c := make(Catalog, len(adapters))
	for _, a := range adapters {
		if a == nil {
			continue
		}
		c[normalizeName(a.Name())] = a
	}
	return c
}

// Lookup returns the adapter registered under name.
func (c Catalog) Lookup(name string) (EngineAdapter, bool) {
	a, ok := c[normalizeName(name)]
	return a, ok
}

// Names returns the sorted adapter names.
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
