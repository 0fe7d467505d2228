package unbound

// entry is one attribute line. Keys repeat (access-control, local-data,
// forward-addr), so a section is a multimap rather than a plain map.
type entry struct {
	key   string
	value string
}

// Section is an insertion-ordered multimap of attribute keys to values.
// Order is preserved so generated output stays close to what an operator
// wrote or what a migrator emitted.
type Section struct {
	entries []entry
}

// NewSection returns an empty section.
func NewSection() *Section {
	return &Section{}
}

// Add appends a key/value pair, keeping any earlier values for the same key.
func (s *Section) Add(key, value string) {
	s.entries = append(s.entries, entry{key: key, value: value})
}

// Set replaces the first value for key, or appends when the key is absent.
// Additional occurrences of the key are left untouched.
func (s *Section) Set(key, value string) {
	for i := range s.entries {
		if s.entries[i].key == key {
			s.entries[i].value = value
			return
		}
	}
	s.Add(key, value)
}

// Get returns the first value for key.
func (s *Section) Get(key string) (string, bool) {
	for _, e := range s.entries {
		if e.key == key {
			return e.value, true
		}
	}
	return "", false
}

// GetAll returns every value for key, in insertion order.
func (s *Section) GetAll(key string) []string {
	var out []string
	for _, e := range s.entries {
		if e.key == key {
			out = append(out, e.value)
		}
	}
	return out
}

// Has reports whether key appears at least once.
func (s *Section) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// Keys returns the distinct keys in first-appearance order.
func (s *Section) Keys() []string {
	seen := map[string]struct{}{}
	var out []string
	for _, e := range s.entries {
		if _, ok := seen[e.key]; ok {
			continue
		}
		seen[e.key] = struct{}{}
		out = append(out, e.key)
	}
	return out
}

// Len returns the number of attribute lines in the section.
func (s *Section) Len() int {
	return len(s.entries)
}
