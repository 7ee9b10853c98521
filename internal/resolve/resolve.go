// Package resolve implements zonewarden's resolution precedence: exact
// BASE match, exact SUBDOMAIN match, wildcard ascent, CNAME fallback, and
// finally NXDOMAIN.
package resolve

import (
	"errors"
	"strings"

	"github.com/ngrigoriev/zonewarden/internal/store"
)

// ErrNXDomain is returned when no record, including a CNAME fallback,
// answers the query.
var ErrNXDomain = errors.New("resolve: name does not exist")

// Result is a resolved answer: the record type actually being returned
// (which may differ from the queried type when a CNAME fallback applies)
// and its ordered values.
type Result struct {
	Type   store.RecordType
	Values []string
}

// Resolver answers queries against a Store using the BASE → SUBDOMAIN →
// wildcard → CNAME-fallback precedence described in spec.md §4.3.
type Resolver struct {
	store *store.Store
}

// New builds a Resolver backed by s. The Resolver holds no state of its
// own; RELOAD simply swaps the Store's contents underneath it.
func New(s *store.Store) *Resolver {
	return &Resolver{store: s}
}

// Resolve looks up domain for qtype, applying the full precedence chain
// including a same-domain CNAME fallback when qtype itself has no answer.
// Returns ErrNXDomain when nothing in the chain matches.
func (r *Resolver) Resolve(domain string, qtype store.RecordType) (Result, error) {
	domain = strings.ToLower(domain)

	if res, ok := r.lookupChain(domain, qtype); ok {
		return res, nil
	}

	if qtype != store.TypeCNAME {
		if res, ok := r.lookupChain(domain, store.TypeCNAME); ok {
			return res, nil
		}
	}

	return Result{}, ErrNXDomain
}

// lookupChain tries BASE, then SUBDOMAIN, then wildcard ascent, for one
// specific type.
func (r *Resolver) lookupChain(domain string, typ store.RecordType) (Result, bool) {
	if rec, err := r.store.Get(store.NewKey(store.ScopeBase, domain, typ)); err == nil {
		return Result{Type: typ, Values: rec.Values}, true
	}

	if rec, err := r.store.Get(store.NewKey(store.ScopeSubdomain, domain, typ)); err == nil {
		return Result{Type: typ, Values: rec.Values}, true
	}

	for _, candidate := range wildcardCandidates(domain) {
		if rec, err := r.store.Get(store.NewKey(store.ScopeWildcard, candidate, typ)); err == nil {
			return Result{Type: typ, Values: rec.Values}, true
		}
	}

	return Result{}, false
}

// wildcardCandidates returns the "*.<suffix>" ascent sequence for domain,
// one label shorter each time: "a.b.example.com" yields
// ["*.b.example.com", "*.example.com", "*.com"]. The full domain itself is
// never a candidate; a wildcard answers subdomains of its registered
// suffix, not the suffix itself.
func wildcardCandidates(domain string) []string {
	labels := strings.Split(domain, ".")
	if len(labels) <= 1 {
		return nil
	}
	candidates := make([]string, 0, len(labels)-1)
	for i := 1; i < len(labels); i++ {
		candidates = append(candidates, "*."+strings.Join(labels[i:], "."))
	}
	return candidates
}
