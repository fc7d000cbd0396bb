package fields

// Resolution is the full outcome of mapping one native type string: the
// field type plus whatever the matched pattern knows about the type's
// structure (array element, map key/value).
type Resolution struct {
	Type        FieldType
	ElementType string
	KeyType     string
	ValueType   string
}

// Matcher is one composite-pattern rule. Matchers either produce a
// resolution or decline; they are tried in a fixed priority order after the
// exact primitive lookup misses.
type Matcher func(typ string) (Resolution, bool)

// Mapper resolves native type strings to UI field types in two stages:
// an exact-match lookup in the ecosystem's primitive table, then the
// ecosystem's ordered composite matchers. An unmatched type falls back to a
// plain text field rather than failing; availability wins over strictness.
type Mapper struct {
	primitives map[string]FieldType
	matchers   []Matcher
}

func NewMapper(primitives map[string]FieldType, matchers []Matcher) *Mapper {
	return &Mapper{primitives: primitives, matchers: matchers}
}

// Resolve maps a native type string to its field resolution. known reports
// whether any table entry or matcher recognized the type; callers surface a
// diagnostic on fallback but still get a usable text field.
func (m *Mapper) Resolve(typ string) (Resolution, bool) {
	if ft, ok := m.primitives[typ]; ok {
		return Resolution{Type: ft}, true
	}
	for _, match := range m.matchers {
		if res, ok := match(typ); ok {
			return res, true
		}
	}
	return Resolution{Type: FieldText}, false
}

// Map returns just the field type for a native type string.
func (m *Mapper) Map(typ string) FieldType {
	res, _ := m.Resolve(typ)
	return res.Type
}
