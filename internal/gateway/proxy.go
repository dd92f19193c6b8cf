package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"example.com/kalendas/internal/apperr"
	transport "example.com/kalendas/internal/transport/http"
)

func singleJoiningSlash(a, b string) string {
	aslash := strings.HasSuffix(a, "/")
	bslash := strings.HasPrefix(b, "/")
	switch {
	case aslash && bslash:
		return a + b[1:]
	case !aslash && !bslash:
		if b == "" {
			return a
		}
		return a + "/" + b
	}
	return a + b
}

// forwarder relays requests to one downstream service. Method, query,
// headers and body go out unchanged apart from hop-by-hop headers and the
// X-Forwarded-* set; the response comes back verbatim.
type forwarder struct {
	name    string
	target  *url.URL
	timeout time.Duration
	proxy   *httputil.ReverseProxy
	log     *logrus.Entry
}

func newForwarder(name string, target *url.URL, timeout time.Duration, rt http.RoundTripper, log *logrus.Entry) *forwarder {
	f := &forwarder{
		name:    name,
		target:  target,
		timeout: timeout,
		log:     log.WithField("service", name),
	}
	f.proxy = &httputil.ReverseProxy{
		Rewrite:      f.rewrite,
		Transport:    rt,
		ErrorHandler: f.fail,
	}
	return f
}

func (f *forwarder) rewrite(pr *httputil.ProxyRequest) {
	out := pr.Out.URL
	out.Scheme = f.target.Scheme
	out.Host = f.target.Host
	out.Path = singleJoiningSlash(f.target.Path, pr.In.URL.Path)
	out.RawPath = ""
	switch {
	case f.target.RawQuery == "":
	case out.RawQuery == "":
		out.RawQuery = f.target.RawQuery
	default:
		out.RawQuery = f.target.RawQuery + "&" + out.RawQuery
	}
	pr.Out.Host = ""
	pr.SetXForwarded()
}

func (f *forwarder) fail(w http.ResponseWriter, r *http.Request, err error) {
	// The body limit trips while the transport streams the request upstream.
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		f.log.WithField("path", r.URL.Path).Warn("request body over limit")
		transport.WriteProblem(w, http.StatusRequestEntityTooLarge, "request too large", tooBig.Error(), nil)
		return
	}
	f.log.WithError(err).WithField("path", r.URL.Path).Error("upstream request failed")
	transport.WriteError(w, apperr.Upstream(f.name, err))
}

// forward sends r, whose path has already been reduced to the part after the
// service name, to the service.
func (f *forwarder) forward(w http.ResponseWriter, r *http.Request, rest string) {
	ctx := r.Context()
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	out := r.Clone(ctx)
	out.URL.Path = "/" + rest
	out.URL.RawPath = ""
	f.log.WithFields(logrus.Fields{"method": r.Method, "path": out.URL.Path}).Debug("forwarding")
	f.proxy.ServeHTTP(w, out)
}
