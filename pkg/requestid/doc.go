// Package requestid tags each HTTP request with a correlation ID.
//
// The middleware keeps a client supplied X-Request-ID when it is at most 128
// characters of [A-Za-z0-9_-], and generates a UUID otherwise. The ID is
// stored in the request context and echoed in the response header.
// LoggerExtractor puts it on every log record written with that context:
//
//	log := logger.New(logger.WithContextExtractors(
//		requestid.LoggerExtractor(),
//		tenant.LoggerExtractor(),
//	))
//	r := chi.NewRouter()
//	r.Use(requestid.Middleware)
package requestid
