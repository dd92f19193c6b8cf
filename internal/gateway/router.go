package gateway

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/justinas/alice"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"example.com/kalendas/internal/apperr"
	transport "example.com/kalendas/internal/transport/http"
)

const welcome = "Welcome to the Kalendas API."

var forwardedMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete}

type Options struct {
	// Timeout bounds each forwarded request, including the response body.
	Timeout        time.Duration
	AllowedOrigins []string
	MaxBodyBytes   int64
	// Transport is used for upstream calls; nil means http.DefaultTransport.
	Transport http.RoundTripper
	Log       *logrus.Entry
}

type Router struct {
	registry   *Registry
	forwarders map[string]*forwarder
	opts       Options
	log        *logrus.Entry
}

func NewRouter(reg *Registry, opts Options) *Router {
	rt := &Router{
		registry:   reg,
		forwarders: map[string]*forwarder{},
		opts:       opts,
		log:        opts.Log,
	}
	for _, name := range reg.Names() {
		target, _ := reg.Lookup(name)
		rt.forwarders[name] = newForwarder(name, target, opts.Timeout, opts.Transport, opts.Log)
	}
	return rt
}

func (rt *Router) handleRoot(w http.ResponseWriter, r *http.Request) {
	transport.WriteJSON(w, http.StatusOK, map[string]any{
		"message":  welcome,
		"services": rt.registry.Names(),
	})
}

func (rt *Router) handleForward(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	name := vars["service"]
	f, ok := rt.forwarders[name]
	if !ok {
		transport.WriteError(w, apperr.NotFoundf("service '%s' not found", name))
		return
	}
	if limit := rt.opts.MaxBodyBytes; limit > 0 && r.ContentLength > limit {
		transport.WriteProblem(w, http.StatusRequestEntityTooLarge, "request too large",
			fmt.Sprintf("request body exceeds %d bytes", limit), nil)
		return
	}
	f.forward(w, r, vars["rest"])
}

// Handler returns the complete gateway handler: CORS, access log and body
// limit around the dispatch routes.
func (rt *Router) Handler() http.Handler {
	m := mux.NewRouter()
	m.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		transport.WriteProblem(w, http.StatusNotFound, "not found", "no route for "+r.URL.Path, nil)
	})
	m.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		transport.WriteProblem(w, http.StatusMethodNotAllowed, "method not allowed", r.Method+" is not forwarded", nil)
	})

	m.HandleFunc("/", rt.handleRoot).Methods(http.MethodGet)
	m.HandleFunc("/{service}", rt.handleForward).Methods(forwardedMethods...)
	m.HandleFunc("/{service}/{rest:.*}", rt.handleForward).Methods(forwardedMethods...)

	origins := rt.opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: forwardedMethods,
		AllowedHeaders: []string{"*"},
	})

	return alice.New(
		transport.AccessLog(rt.log),
		c.Handler,
		transport.BodyLimit(rt.opts.MaxBodyBytes),
	).Then(m)
}
