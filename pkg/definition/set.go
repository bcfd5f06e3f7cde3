package definition

import (
	"errors"
	"fmt"

	"github.com/abdul-hamid-achik/nexo-routes/pkg/metadata"
)

var (
	// ErrDuplicateGroup is returned when two groups share an ID.
	ErrDuplicateGroup = errors.New("duplicate group id")

	// ErrUnknownGroup is returned when a route or group refers to an undeclared group.
	ErrUnknownGroup = errors.New("unknown group")

	// ErrMissingGroupID is returned for a group declared without an ID.
	ErrMissingGroupID = errors.New("group has no id")
)

// Set collects documents from one or more files. Group IDs are shared across
// every document in the set.
type Set struct {
	docs []sourcedDocument
}

type sourcedDocument struct {
	source string
	doc    *Document
}

// NewSet creates an empty Set.
func NewSet() *Set {
	return &Set{}
}

// Add appends a document. source is used in error messages.
func (s *Set) Add(source string, doc *Document) {
	s.docs = append(s.docs, sourcedDocument{source: source, doc: doc})
}

// Len returns the number of documents in the set.
func (s *Set) Len() int {
	return len(s.docs)
}

// Build creates the metadata records. Routes are returned in declaration
// order. Group parent cycles are left for the resolver to report.
func (s *Set) Build() ([]*metadata.Route, error) {
	groups := make(map[string]*metadata.Group)
	declaredIn := make(map[string]string)

	for _, sd := range s.docs {
		for _, spec := range sd.doc.Groups {
			if spec.ID == "" {
				return nil, fmt.Errorf("%s: %w", sd.source, ErrMissingGroupID)
			}
			if prev, ok := declaredIn[spec.ID]; ok {
				return nil, fmt.Errorf("%s: %w %q (first declared in %s)", sd.source, ErrDuplicateGroup, spec.ID, prev)
			}

			groups[spec.ID] = &metadata.Group{
				PathFragment: spec.Fragment.toMetadata(),
				ID:           spec.ID,
				Prefix:       spec.Prefix,
			}
			declaredIn[spec.ID] = sd.source
		}
	}

	for _, sd := range s.docs {
		for _, spec := range sd.doc.Groups {
			if spec.Parent == "" {
				continue
			}
			parent, ok := groups[spec.Parent]
			if !ok {
				return nil, fmt.Errorf("%s: group %q: %w %q", sd.source, spec.ID, ErrUnknownGroup, spec.Parent)
			}
			groups[spec.ID].Parent = parent
		}
	}

	var routes []*metadata.Route
	for _, sd := range s.docs {
		for i, spec := range sd.doc.Routes {
			route := &metadata.Route{
				PathFragment:   spec.Fragment.toMetadata(),
				Invokable:      normalizeInvokable(spec.Invokable),
				Name:           spec.Name,
				Methods:        []string(spec.Methods),
				Priority:       spec.Priority,
				XMLHttpRequest: spec.XMLHttpRequest,
			}
			if spec.Transformer != "" {
				route.Transformer = spec.Transformer
			}

			if spec.Group != "" {
				group, ok := groups[spec.Group]
				if !ok {
					return nil, fmt.Errorf("%s: route #%d: %w %q", sd.source, i, ErrUnknownGroup, spec.Group)
				}
				route.Group = group
			}

			if err := route.Validate(); err != nil {
				return nil, fmt.Errorf("%s: route #%d: %w", sd.source, i, err)
			}

			routes = append(routes, route)
		}
	}

	return routes, nil
}

func (f Fragment) toMetadata() metadata.PathFragment {
	return metadata.PathFragment{
		Pattern:      f.Pattern,
		Placeholders: f.Placeholders,
		Parameters:   f.Parameters,
		Arguments:    f.Arguments,
		Middleware:   f.Middleware,
	}
}
