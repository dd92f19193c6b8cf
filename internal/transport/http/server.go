package transporthttp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/justinas/alice"
	"github.com/sirupsen/logrus"
)

// Mount registers a group of routes on the service router.
type Mount func(r *mux.Router, log *logrus.Entry)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type ServerDeps struct {
	// Name is the human name of the service, e.g. "Calendar".
	Name         string
	Store        Pinger
	MaxBodyBytes int64
	Log          *logrus.Entry
}

func (d *ServerDeps) HandleRoot(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("%s service is running and connected", d.Name),
	})
}

func (d *ServerDeps) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (d *ServerDeps) HandleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := d.Store.Ping(ctx); err != nil {
		d.Log.WithError(err).Warn("readiness check failed")
		WriteProblem(w, http.StatusServiceUnavailable, "not ready", "store not reachable", nil)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Router builds the full HTTP surface of a resource service.
func (d *ServerDeps) Router(mounts ...Mount) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteProblem(w, http.StatusNotFound, "not found", "no route for "+r.URL.Path, nil)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteProblem(w, http.StatusMethodNotAllowed, "method not allowed", r.Method+" is not supported on "+r.URL.Path, nil)
	})

	r.HandleFunc("/", d.HandleRoot).Methods(http.MethodGet)
	r.HandleFunc("/healthz", d.HandleHealthz).Methods(http.MethodGet)
	r.HandleFunc("/readyz", d.HandleReadyz).Methods(http.MethodGet)

	for _, m := range mounts {
		m(r, d.Log)
	}

	chain := alice.New(
		AccessLog(d.Log),
		BodyLimit(d.MaxBodyBytes),
		RequireJSON,
	)
	return chain.Then(r)
}

// Serve runs h on addr until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, addr string, h http.Handler, log *logrus.Entry) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Infof("listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
