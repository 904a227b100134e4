package rpc

import (
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/invopop/jsonschema"

	"github.com/timmiekettle/tk2/internal/platform/httpx"
)

// Method describes one remotely callable function.
type Method struct {
	Name    string
	Summary string
	Args    any
	Handler http.HandlerFunc
	// Mutates marks methods that write; they are served on POST only so a
	// cross-site navigation carrying the session cookie cannot reach them
	// without passing the CSRF check.
	Mutates bool
}

// Registry collects methods under a dotted namespace such as "tk2.api".
type Registry struct {
	namespace string

	mu      sync.RWMutex
	methods map[string]Method
	schemas map[string]*jsonschema.Schema
}

// NewRegistry returns an empty registry for namespace.
func NewRegistry(namespace string) *Registry {
	return &Registry{
		namespace: namespace,
		methods:   make(map[string]Method),
		schemas:   make(map[string]*jsonschema.Schema),
	}
}

// Register adds a read-only method, served on GET and POST. args is a zero
// value of the argument struct and may be nil for methods without arguments.
func (reg *Registry) Register(name, summary string, args any, h http.HandlerFunc) {
	reg.add(Method{Name: name, Summary: summary, Args: args, Handler: h})
}

// RegisterMutation adds a method that changes state. It is served on POST
// only; GET answers 405.
func (reg *Registry) RegisterMutation(name, summary string, args any, h http.HandlerFunc) {
	reg.add(Method{Name: name, Summary: summary, Args: args, Handler: h, Mutates: true})
}

func (reg *Registry) add(m Method) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.methods[m.Name] = m
	delete(reg.schemas, m.Name)
}

// Lookup returns the registered method called name.
func (reg *Registry) Lookup(name string) (Method, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	m, ok := reg.methods[name]
	return m, ok
}

// Path returns the URL path a method is served on.
func (reg *Registry) Path(name string) string {
	return "/api/method/" + reg.namespace + "." + name
}

// Names lists registered methods in lexical order.
func (reg *Registry) Names() []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	names := make([]string, 0, len(reg.methods))
	for name := range reg.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MountRoutes registers read-only methods for GET and POST and mutations for
// POST only.
func (reg *Registry) MountRoutes(r chi.Router) {
	for _, name := range reg.Names() {
		m, _ := reg.Lookup(name)
		if !m.Mutates {
			r.Get(reg.Path(name), m.Handler)
		}
		r.Post(reg.Path(name), m.Handler)
	}
	r.Get("/api/schema/{method}", reg.handleSchema)
}

// Schema returns the JSON schema of a method's arguments.
func (reg *Registry) Schema(name string) (*jsonschema.Schema, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if s, ok := reg.schemas[name]; ok {
		return s, true
	}
	m, ok := reg.methods[name]
	if !ok {
		return nil, false
	}
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
		DoNotReference:            true,
	}
	var schema *jsonschema.Schema
	if m.Args == nil {
		schema = &jsonschema.Schema{Type: "object"}
	} else {
		schema = reflector.Reflect(m.Args)
	}
	schema.Title = reg.namespace + "." + m.Name
	schema.Description = m.Summary
	reg.schemas[name] = schema
	return schema, true
}

func (reg *Registry) handleSchema(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(chi.URLParam(r, "method"), reg.namespace+".")
	schema, ok := reg.Schema(name)
	if !ok {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	httpx.JSON(w, http.StatusOK, schema)
}
