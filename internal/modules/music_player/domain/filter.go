package domain

import "strings"

// Filter is a named audio filter applied to the stream pipeline.
// The engine treats the name as opaque; the transport adapter maps it
// to a concrete pipeline configuration.
type Filter struct {
	Name string
}

// FilterList is an ordered set of filters. Order matters: the transport
// rebuilds the pipeline in list order.
type FilterList []Filter

// Has reports whether a filter with the given name is in the list.
func (l FilterList) Has(name string) bool {
	for _, f := range l {
		if f.Name == name {
			return true
		}
	}
	return false
}

// Names returns the filter names in order.
func (l FilterList) Names() []string {
	names := make([]string, len(l))
	for i, f := range l {
		names[i] = f.Name
	}
	return names
}

// String joins the filter names with commas, or "none" for an empty list.
func (l FilterList) String() string {
	if len(l) == 0 {
		return "none"
	}
	return strings.Join(l.Names(), ", ")
}

// Clone returns a copy of the list so callers cannot mutate queue state.
func (l FilterList) Clone() FilterList {
	if l == nil {
		return nil
	}
	out := make(FilterList, len(l))
	copy(out, l)
	return out
}
