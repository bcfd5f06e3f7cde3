// Package resolver flattens route and group metadata into a validated,
// ordered, collision-free route table.
//
// For every route the resolver walks the group chain and composes the final
// pattern, methods, name, middleware, arguments and parameters. Over the whole
// set it detects duplicated names and paths and sorts by priority.
//
// Resolution is synchronous and deterministic. Per-route results are memoized
// once and may be read concurrently afterwards.
package resolver

import (
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/abdul-hamid-achik/nexo-routes/pkg/metadata"
	"github.com/abdul-hamid-achik/nexo-routes/pkg/naming"
)

// Resolver composes route metadata across group chains.
type Resolver struct {
	strategy naming.Strategy
	aliases  map[string]string
	logger   logrus.FieldLogger

	// cache holds one *entry per *metadata.Route
	cache sync.Map
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithNamingStrategy sets the strategy used to combine name segments.
// The default is naming.SnakeCase.
func WithNamingStrategy(s naming.Strategy) Option {
	return func(r *Resolver) {
		if s != nil {
			r.strategy = s
		}
	}
}

// WithAliases adds placeholder aliases on top of DefaultAliases.
// An alias with the same name as a default replaces it.
func WithAliases(aliases map[string]string) Option {
	return func(r *Resolver) {
		maps.Copy(r.aliases, aliases)
	}
}

// WithLogger sets the logger. The default is logrus.StandardLogger().
func WithLogger(l logrus.FieldLogger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a Resolver.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		strategy: naming.SnakeCase,
		aliases:  maps.Clone(DefaultAliases),
		logger:   logrus.StandardLogger(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// entry memoizes the per-route results. Each value is written once.
type entry struct {
	chainOnce sync.Once
	chain     []*metadata.Group
	chainErr  error

	patternOnce sync.Once
	pattern     string
	patternErr  error

	nameOnce sync.Once
	name     string
	nameErr  error
}

func (r *Resolver) entry(route *metadata.Route) *entry {
	e, _ := r.cache.LoadOrStore(route, &entry{})
	return e.(*entry)
}

// GroupChain returns the route's group ancestry, root group first.
func (r *Resolver) GroupChain(route *metadata.Route) ([]*metadata.Group, error) {
	e := r.entry(route)
	e.chainOnce.Do(func() {
		e.chain, e.chainErr = groupChain(route)
	})
	if e.chainErr != nil {
		return nil, e.chainErr
	}
	return slices.Clone(e.chain), nil
}

func groupChain(route *metadata.Route) ([]*metadata.Group, error) {
	var chain []*metadata.Group
	visited := make(map[*metadata.Group]struct{})

	for g := route.Group; g != nil; g = g.Parent {
		if _, ok := visited[g]; ok {
			return nil, &CircularGroupReferenceError{Group: g.String()}
		}
		visited[g] = struct{}{}
		chain = append(chain, g)
	}

	slices.Reverse(chain)
	return chain, nil
}

// Pattern returns the route's full pattern with declared placeholders
// expanded to "{name:expr}".
func (r *Resolver) Pattern(route *metadata.Route) (string, error) {
	e := r.entry(route)
	e.patternOnce.Do(func() {
		e.pattern, e.patternErr = r.composePattern(route)
	})
	return e.pattern, e.patternErr
}

func (r *Resolver) composePattern(route *metadata.Route) (string, error) {
	chain, err := r.GroupChain(route)
	if err != nil {
		return "", err
	}

	fragments := make([]string, 0, len(chain)+1)
	for _, g := range chain {
		fragments = append(fragments, g.Pattern)
	}
	fragments = append(fragments, route.Pattern)
	pattern := joinFragments(fragments)

	if offset := unbalancedBrace(pattern); offset >= 0 {
		return "", &MalformedPatternError{Pattern: pattern, Offset: offset}
	}

	tokens := scanTokens(pattern)

	seen := make(map[string]int, len(tokens))
	var duplicated []string
	for _, t := range tokens {
		name := t.name()
		seen[name]++
		if seen[name] == 2 {
			duplicated = append(duplicated, name)
		}
	}
	if len(duplicated) > 0 {
		return "", &DuplicatedParameterError{Pattern: pattern, Names: duplicated}
	}

	var inline []string
	for _, t := range tokens {
		if t.inline() {
			inline = append(inline, "{"+t.body+"}")
		}
	}
	if len(inline) > 0 {
		return "", &MissingPlaceholderDeclarationError{Pattern: pattern, Tokens: inline}
	}

	placeholders := make(map[string]string)
	for _, g := range chain {
		maps.Copy(placeholders, g.Placeholders)
	}
	maps.Copy(placeholders, route.Placeholders)

	exprs := make(map[string]string, len(tokens))
	for _, t := range tokens {
		declared, ok := placeholders[t.name()]
		if !ok {
			continue
		}
		expr, err := r.ResolvePlaceholder(declared)
		if err != nil {
			return "", err
		}
		exprs[t.name()] = expr
	}

	resolved := rewriteTokens(pattern, tokens, func(t token) string {
		if expr, ok := exprs[t.name()]; ok {
			return "{" + t.name() + ":" + expr + "}"
		}
		return "{" + t.body + "}"
	})

	// an expression such as "a{" unbalances the expanded token
	if offset := unbalancedBrace(resolved); offset >= 0 {
		return "", &MalformedPatternError{Pattern: resolved, Offset: offset}
	}

	return resolved, nil
}

// ResolvePlaceholder expands an alias or validates a placeholder expression.
func (r *Resolver) ResolvePlaceholder(placeholder string) (string, error) {
	if expr, ok := r.aliases[placeholder]; ok {
		return expr, nil
	}

	if err := compileExpression(placeholder); err != nil {
		return "", &UnknownPlaceholderAliasError{Placeholder: placeholder, Err: err}
	}

	return placeholder, nil
}

// Methods returns the route's HTTP methods, upper-cased and de-duplicated.
// A sole "ANY" expands to metadata.AnyMethods.
func (r *Resolver) Methods(route *metadata.Route) ([]string, error) {
	methods := make([]string, 0, len(route.Methods))
	seen := make(map[string]bool, len(route.Methods))
	for _, m := range route.Methods {
		m = strings.ToUpper(strings.TrimSpace(m))
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		methods = append(methods, m)
	}

	if len(methods) == 0 {
		return nil, metadata.ErrNoMethods
	}

	if seen[metadata.MethodAny] {
		if len(methods) > 1 {
			return nil, &InvalidMethodCombinationError{Methods: methods}
		}
		return slices.Clone(metadata.AnyMethods), nil
	}

	return methods, nil
}

// Middleware returns the route's own middleware followed by each group's,
// nearest group first and root group last.
func (r *Resolver) Middleware(route *metadata.Route) ([]any, error) {
	chain, err := r.GroupChain(route)
	if err != nil {
		return nil, err
	}

	middleware := slices.Clone(route.Middleware)
	for i := len(chain) - 1; i >= 0; i-- {
		middleware = append(middleware, chain[i].Middleware...)
	}

	return middleware, nil
}

// Arguments merges arguments from the root group down to the route.
// Nearer levels override farther ones.
func (r *Resolver) Arguments(route *metadata.Route) (map[string]any, error) {
	chain, err := r.GroupChain(route)
	if err != nil {
		return nil, err
	}

	return merge(chain, route, func(f *metadata.PathFragment) map[string]any { return f.Arguments }), nil
}

// Parameters merges parameter type tags from the root group down to the route.
// Nearer levels override farther ones.
func (r *Resolver) Parameters(route *metadata.Route) (map[string]string, error) {
	chain, err := r.GroupChain(route)
	if err != nil {
		return nil, err
	}

	return merge(chain, route, func(f *metadata.PathFragment) map[string]string { return f.Parameters }), nil
}

func merge[V any](chain []*metadata.Group, route *metadata.Route, field func(*metadata.PathFragment) map[string]V) map[string]V {
	merged := make(map[string]V)
	for _, g := range chain {
		maps.Copy(merged, field(&g.PathFragment))
	}
	maps.Copy(merged, field(&route.PathFragment))
	return merged
}

// Name returns the route's full name, or "" when the route is unnamed.
// Non-empty group prefixes (root first) and the route name are combined by
// the naming strategy.
func (r *Resolver) Name(route *metadata.Route) (string, error) {
	e := r.entry(route)
	e.nameOnce.Do(func() {
		e.name, e.nameErr = r.composeName(route)
	})
	return e.name, e.nameErr
}

func (r *Resolver) composeName(route *metadata.Route) (string, error) {
	if route.Name == "" {
		return "", nil
	}

	chain, err := r.GroupChain(route)
	if err != nil {
		return "", err
	}

	segments := make([]string, 0, len(chain)+1)
	for _, g := range chain {
		if g.Prefix != "" {
			segments = append(segments, g.Prefix)
		}
	}
	segments = append(segments, route.Name)

	return r.strategy.Combine(segments), nil
}

// CheckDuplicatedRoutes fails when two routes share a name, or when two routes
// answer the same method on structurally identical paths. Each failure lists
// every offending value.
func (r *Resolver) CheckDuplicatedRoutes(routes []*metadata.Route) error {
	names := make([]string, 0, len(routes))
	for _, route := range routes {
		name, err := r.Name(route)
		if err != nil {
			return err
		}
		if name != "" {
			names = append(names, name)
		}
	}
	if dups := duplicates(names); len(dups) > 0 {
		return &DuplicatedRouteNameError{Names: dups}
	}

	paths := make([]string, 0, len(routes))
	for _, route := range routes {
		methods, err := r.Methods(route)
		if err != nil {
			return err
		}
		pattern, err := r.Pattern(route)
		if err != nil {
			return err
		}
		normalized := NormalizePattern(pattern)
		for _, m := range methods {
			paths = append(paths, m+normalized)
		}
	}
	if dups := duplicates(paths); len(dups) > 0 {
		return &DuplicatedRoutePathError{Paths: dups}
	}

	return nil
}

// duplicates returns the values occurring more than once, in the order they repeat.
func duplicates(values []string) []string {
	counts := make(map[string]int, len(values))
	var dups []string
	for _, v := range values {
		counts[v]++
		if counts[v] == 2 {
			dups = append(dups, v)
		}
	}
	return dups
}

// Sort returns the routes ordered by ascending priority. Routes with equal
// priority keep their relative order. The input slice is not modified.
func (r *Resolver) Sort(routes []*metadata.Route) []*metadata.Route {
	sorted := slices.Clone(routes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority < sorted[j].Priority
	})
	return sorted
}

// Resolve validates the whole set and returns the resolved table in
// registration order. No partial table is returned on error.
func (r *Resolver) Resolve(routes []*metadata.Route) ([]*Route, error) {
	for i, route := range routes {
		if err := route.Validate(); err != nil {
			return nil, fmt.Errorf("route #%d (%s): %w", i, describe(route), err)
		}
	}

	if err := r.CheckDuplicatedRoutes(routes); err != nil {
		return nil, err
	}

	sorted := r.Sort(routes)
	table := make([]*Route, 0, len(sorted))

	for _, route := range sorted {
		resolved, err := r.resolve(route)
		if err != nil {
			return nil, fmt.Errorf("route %s: %w", describe(route), err)
		}

		r.logger.WithFields(logrus.Fields{
			"name":     resolved.Name,
			"methods":  strings.Join(resolved.Methods, ","),
			"pattern":  resolved.Pattern,
			"priority": resolved.Priority,
		}).Debug("resolved route")

		table = append(table, resolved)
	}

	r.logger.WithField("routes", len(table)).Info("route table resolved")

	return table, nil
}

func (r *Resolver) resolve(route *metadata.Route) (*Route, error) {
	pattern, err := r.Pattern(route)
	if err != nil {
		return nil, err
	}
	methods, err := r.Methods(route)
	if err != nil {
		return nil, err
	}
	name, err := r.Name(route)
	if err != nil {
		return nil, err
	}
	middleware, err := r.Middleware(route)
	if err != nil {
		return nil, err
	}
	arguments, err := r.Arguments(route)
	if err != nil {
		return nil, err
	}
	parameters, err := r.Parameters(route)
	if err != nil {
		return nil, err
	}

	return &Route{
		Methods:        methods,
		Pattern:        pattern,
		Name:           name,
		Middleware:     middleware,
		Arguments:      arguments,
		Parameters:     parameters,
		Priority:       route.Priority,
		XMLHttpRequest: route.XMLHttpRequest,
		Transformer:    route.Transformer,
		Invokable:      route.Invokable,
		Source:         route,
	}, nil
}

// describe identifies a route in error messages.
func describe(route *metadata.Route) string {
	if route.Name != "" {
		return fmt.Sprintf("%q", route.Name)
	}
	if route.Pattern != "" {
		return fmt.Sprintf("%q", route.Pattern)
	}
	return fmt.Sprintf("%v", route.Invokable)
}
