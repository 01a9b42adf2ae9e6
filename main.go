package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/exp/slog"
	"golang.org/x/time/rate"

	"github.com/ttpr0/go-routing/graph"
	"github.com/ttpr0/go-routing/loader"
)

// App holds everything a request handler needs: the routing graph and the
// config it was built from. One instance, built once at startup and never
// mutated afterward, the way the teacher's RoutingManager is built once in
// main and referenced through the package-level MANAGER variable.
//
// Source is the in-memory graph used for coordinate-to-edge snapping
// (graph.Locate has no spatial index and needs to enumerate every node);
// Graph is the persistent-cache-backed reader the search itself runs
// against. The OSM extract is parsed again on every start to build Source,
// which also feeds the tile cache.
type App struct {
	Config Config
	Source *graph.MemGraphReader
	Graph  *loader.TileCache
}

var APP *App

func main() {
	slog.SetDefault(slog.New(NewLogHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	config := ReadConfig("./config.yaml")

	slog.Info("building graph", "osm", config.Build.OSM)
	source, err := loader.ParseGraph(config.Build.OSM, loader.DrivingDecoder{})
	if err != nil {
		slog.Error("failed to parse osm extract", "error", err.Error())
		panic(err)
	}
	tileCache, err := loader.OpenTileCache(config.Build.TileCache, source)
	if err != nil {
		slog.Error("failed to open tile cache", "error", err.Error())
		panic(err)
	}

	APP = &App{Config: config, Source: source, Graph: tileCache}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST"},
	}))
	router.Use(rateLimitMiddleware(config.Server.RateLimitPerSec, config.Server.RateLimitBurst))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	MapPost(router, "/v1/matrix", HandleMatrixRequest)

	slog.Info("listening", "addr", config.Server.Addr)
	if err := http.ListenAndServe(config.Server.Addr, router); err != nil {
		slog.Error("server exited", "error", err.Error())
	}
}

// rateLimitMiddleware caps request throughput with a single shared
// token-bucket limiter (golang.org/x/time/rate), enough for a single-tenant
// matrix daemon; a multi-tenant deployment would key one limiter per client
// instead.
func rateLimitMiddleware(perSecond float64, burst int) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(rate.Limit(perSecond), burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), time.Second)
			defer cancel()
			if err := limiter.Wait(ctx); err != nil {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
