package render

// Values is read access to a mention value table.
type Values interface {
	Lookup(id string) (string, bool)
}

// Table is an in-memory mention value table. The host owns it and must serialize
// writers; a render only reads.
type Table map[string]string

// Lookup implements Values.
func (t Table) Lookup(id string) (string, bool) {
	value, ok := t[id]
	return value, ok
}

// Update records an override for id. Rendering never calls it.
func (t Table) Update(id, value string) {
	t[id] = value
}

// Resolve returns the table's value for id when present, even if empty, and
// defaultValue otherwise.
func Resolve(id, defaultValue string, values Values) string {
	if values == nil {
		return defaultValue
	}
	if value, ok := values.Lookup(id); ok {
		return value
	}
	return defaultValue
}
