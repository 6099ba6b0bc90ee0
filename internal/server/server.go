package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"slices"
	"time"

	"github.com/99designs/gqlgen/graphql"
	"github.com/99designs/gqlgen/graphql/handler"
	"github.com/99designs/gqlgen/graphql/handler/extension"
	"github.com/99designs/gqlgen/graphql/handler/transport"
	"github.com/99designs/gqlgen/graphql/playground"
	"github.com/UkralStul/social-feed/internal/dataloader"
	"github.com/UkralStul/social-feed/internal/metrics"
	"github.com/UkralStul/social-feed/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

const (
	QueryPath = "/query"

	CodeNotFound = "NOT_FOUND"
)

// Options - параметры транспорта.
type Options struct {
	// AllowedOrigins - разрешенные Origin для websocket и CORS. "*" разрешает все.
	AllowedOrigins []string
	KeepAlive      time.Duration
}

// NewGraphQLServer собирает gqlgen-сервер. Websocket-транспорт идет первым,
// чтобы upgrade-запросы проходили через проверку Origin.
func NewGraphQLServer(schema graphql.ExecutableSchema, opts Options) *handler.Server {
	srv := handler.New(schema)

	srv.AddTransport(&transport.Websocket{
		Upgrader: websocket.Upgrader{
			CheckOrigin: OriginChecker(opts.AllowedOrigins),
		},
		KeepAlivePingInterval: opts.KeepAlive,
	})
	srv.AddTransport(transport.Options{})
	srv.AddTransport(transport.GET{})
	srv.AddTransport(transport.POST{})
	srv.AddTransport(transport.MultipartForm{})

	srv.Use(extension.Introspection{})

	srv.SetErrorPresenter(PresentError)
	srv.SetRecoverFunc(func(ctx context.Context, err interface{}) error {
		log.Printf("resolver panic: %v", err)
		return errors.New("internal server error")
	})
	srv.AroundOperations(func(ctx context.Context, next graphql.OperationHandler) graphql.ResponseHandler {
		opType := "unknown"
		if oc := graphql.GetOperationContext(ctx); oc != nil && oc.Operation != nil {
			opType = string(oc.Operation.Operation)
		}
		metrics.GraphQLOperationsTotal.WithLabelValues(opType).Inc()
		return next(ctx)
	})

	return srv
}

// NewRouter монтирует GraphQL, playground, метрики и healthz на chi-роутер.
func NewRouter(gql http.Handler, store storage.Storage, opts Options) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/metrics", promhttp.Handler())
	router.Handle("/", playground.Handler("GraphQL playground", QueryPath))
	router.With(CORS(opts.AllowedOrigins)).Handle(QueryPath, dataloader.Middleware(store, gql))

	return router
}

// PresentError добавляет код NOT_FOUND к ошибкам отсутствующих записей.
func PresentError(ctx context.Context, err error) *gqlerror.Error {
	gqlErr := graphql.DefaultErrorPresenter(ctx, err)
	if errors.Is(err, storage.ErrNotFound) {
		if gqlErr.Extensions == nil {
			gqlErr.Extensions = map[string]interface{}{}
		}
		gqlErr.Extensions["code"] = CodeNotFound
	}
	return gqlErr
}

// OriginChecker разрешает запросы без Origin и с Origin из списка.
func OriginChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		ok := originAllowed(allowed, origin)
		if !ok {
			log.Printf("rejected websocket origin %q", origin)
		}
		return ok
	}
}

func originAllowed(allowed []string, origin string) bool {
	return slices.Contains(allowed, "*") || slices.Contains(allowed, origin)
}

// CORS отвечает на preflight и проставляет заголовки для разрешенных Origin.
func CORS(allowed []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && originAllowed(allowed, origin) {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Add("Vary", "Origin")
				if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
					h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
					h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
					h.Set("Access-Control-Max-Age", fmt.Sprint(int((10 * time.Minute).Seconds())))
					w.WriteHeader(http.StatusNoContent)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
