package routing

import (
	"io"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/graphql-go/graphql"
	gqlhandler "github.com/graphql-go/handler"
	"golang.org/x/time/rate"

	"spinachlang-api/internal/memory"
	"spinachlang-api/internal/middleware"
)

// GraphQLPath is the path prefix the GraphQL API is served under.
const GraphQLPath = "/graphql"

type RouterConfig struct {
	Schema graphql.Schema

	// Serve the GraphiQL explorer for browser GET requests.
	GraphiQL bool

	// The number of requests per second a single client can make, a value of
	// zero disables rate limiting.
	RateLimit float64
	RateBurst int

	// Limit clients by X-Forwarded-For, the API must only be reachable through
	// a proxy setting the header.
	TrustedProxy bool

	// The number of clients the rate limiter tracks at once.
	RateClients int

	// The largest request body accepted by the API.
	MaxBodySize memory.Memory

	// Where the access log of the API is written to.
	AccessLog io.Writer
}

func NewRouter(config RouterConfig) http.Handler {
	r := mux.NewRouter()

	var api http.Handler = gqlhandler.New(&gqlhandler.Config{
		Schema:   &config.Schema,
		Pretty:   true,
		GraphiQL: config.GraphiQL,
	})

	if config.MaxBodySize > 0 {
		api = middleware.BodyLimitMiddleware(config.MaxBodySize)(api)
	}

	if config.RateLimit > 0 {
		api = middleware.RateLimitMiddleware(rate.Limit(config.RateLimit), config.RateBurst, middleware.RateLimitOptions{
			TrustedProxy: config.TrustedProxy,
			MaxClients:   config.RateClients,
		})(api)
	}

	if config.AccessLog != nil {
		api = handlers.LoggingHandler(config.AccessLog, api)
	}

	r.PathPrefix(GraphQLPath).
		Handler(api).
		Methods(http.MethodGet, http.MethodPost)

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Accept", "Content-Type", "Authorization"}),
	)

	return cors(handlers.CompressHandler(r))
}
