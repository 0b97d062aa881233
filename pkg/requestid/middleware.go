package requestid

import (
	"net/http"
	"regexp"

	"github.com/google/uuid"
)

// Header is the default request ID header.
const Header = "X-Request-ID"

const maxIDLength = 128

var validID = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

type options struct {
	header   string
	generate func() string
}

type Option func(*options)

// WithHeader reads and echoes the ID in name instead of X-Request-ID.
func WithHeader(name string) Option {
	return func(o *options) {
		if name != "" {
			o.header = http.CanonicalHeaderKey(name)
		}
	}
}

// WithGenerator replaces the UUIDv4 generator.
func WithGenerator(fn func() string) Option {
	return func(o *options) {
		if fn != nil {
			o.generate = fn
		}
	}
}

// New returns middleware that reuses a well-formed incoming ID or generates
// one, stores it in the request context and echoes it in the response.
func New(opts ...Option) func(http.Handler) http.Handler {
	o := options{header: Header, generate: uuid.NewString}
	for _, opt := range opts {
		opt(&o)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(o.header)
			if !isValid(id) {
				id = o.generate()
			}
			w.Header().Set(o.header, id)
			next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), id)))
		})
	}
}

// Middleware is New with default options.
func Middleware(next http.Handler) http.Handler {
	return New()(next)
}

func isValid(id string) bool {
	return id != "" && len(id) <= maxIDLength && validID.MatchString(id)
}
