package pidgin

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/agentwire/agentwire/core"
)

// referencePrefix is the namespace of generated attachment references, as the
// text-only agent sees them.
const referencePrefix = "/mnt/files/"

// Fingerprint returns the stable identity used to deduplicate a part in the
// file registry: the stored handle, the file URI, or a content hash for
// inline data. Text parts fingerprint by their own value (long text is
// registered verbatim). Control markers have no identity.
func Fingerprint(p core.Part) (string, bool) {
	switch v := p.(type) {
	case core.StoredDataPart:
		return v.Handle, true
	case core.FileDataPart:
		return v.FileURI, true
	case core.InlineDataPart:
		sum := sha256.Sum256([]byte(v.Data))
		return hex.EncodeToString(sum[:]), true
	case core.TextPart:
		return v.Text, true
	default:
		return "", false
	}
}

// FileRegistry maps content fingerprints to stable opaque references.
// Identical fingerprints always resolve to the same reference and a
// fingerprint is registered at most once. The registry is keyed by content,
// not by call, so one registry is safe to reuse across encode calls and
// across goroutines.
type FileRegistry struct {
	mu    sync.Mutex
	refs  map[string]string    // fingerprint -> reference
	parts map[string]core.Part // reference -> registered part
	next  int
}

// NewFileRegistry returns an empty file registry.
func NewFileRegistry() *FileRegistry {
	return &FileRegistry{
		refs:  make(map[string]string),
		parts: make(map[string]core.Part),
	}
}

// Register returns the reference for the fingerprint, registering the part
// under a fresh reference on first sight.
func (r *FileRegistry) Register(fingerprint string, p core.Part) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ref, ok := r.refs[fingerprint]; ok {
		return ref
	}
	r.next++
	ref := fmt.Sprintf("%s%d", referencePrefix, r.next)
	r.refs[fingerprint] = ref
	r.parts[ref] = p
	return ref
}

// Get resolves a previously issued reference back to its part.
func (r *FileRegistry) Get(ref string) (core.Part, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.parts[ref]
	return p, ok
}

// Len reports the number of registered entries.
func (r *FileRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.refs)
}

// routeRegistry maps generated /route-N tags to caller-supplied route
// instance ids. Scope is exactly one encode call: every ToPidgin /
// EncodeSegments invocation starts a fresh registry, so concurrent calls on
// one encoder never share a counter.
type routeRegistry struct {
	tags []string
	byTag map[string]string // "/route-N" -> instance id
}

func newRouteRegistry() *routeRegistry {
	return &routeRegistry{byTag: make(map[string]string)}
}

// Add allocates the next /route-N tag for the instance.
func (r *routeRegistry) Add(instance string) string {
	tag := fmt.Sprintf("/route-%d", len(r.tags)+1)
	r.tags = append(r.tags, tag)
	r.byTag[tag] = instance
	return tag
}

// Lookup resolves a tag back to the original instance id.
func (r *routeRegistry) Lookup(tag string) (string, bool) {
	instance, ok := r.byTag[tag]
	return instance, ok
}
