// Package api GhostShell REST API
//
// @title           GhostShell REST API
// @version         1.0.0
// @description     LSB steganography over lossless raster images.
// @host            localhost:8080
// @BasePath        /api/v1
//
// @securityDefinitions.apikey ApiKeyAuth
// @in              header
// @name            X-API-Key
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggo/swag"
)

const swaggerUI = `<!DOCTYPE html>
<html>
<head>
	 <title>GhostShell API Documentation</title>
	 <link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@3.25.0/swagger-ui.css" />
</head>
<body>
	 <div id="swagger-ui"></div>
	 <script src="https://unpkg.com/swagger-ui-dist@3.25.0/swagger-ui-bundle.js"></script>
	 <script>
	   window.onload = function() {
	     SwaggerUIBundle({
	       url: '/swagger/swagger.json',
	       dom_id: '#swagger-ui',
	       presets: [
	         SwaggerUIBundle.presets.apis,
	         SwaggerUIBundle.presets.standalone
	       ]
	     });
	   };
	 </script>
</body>
</html>`

// NewRouter builds the HTTP handler for s. gatherer backs the /metrics endpoint.
func NewRouter(s *Server, gatherer prometheus.Gatherer) http.Handler {
	metrics := s.metrics

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link", "X-Image-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus metrics endpoint (unprotected for scraping)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(metrics.InstrumentAuthMiddleware(apiKeyMiddleware(s.config.APIKey)))

		r.Get("/health", metrics.InstrumentHandler("GET", "/api/v1/health", s.handleHealth))

		r.Post("/encode", metrics.InstrumentHandler("POST", "/api/v1/encode", s.handleEncode))
		r.Post("/decode", metrics.InstrumentHandler("POST", "/api/v1/decode", s.handleDecode))
		r.Post("/capacity", metrics.InstrumentHandler("POST", "/api/v1/capacity", s.handleCapacity))

		r.Get("/images", metrics.InstrumentHandler("GET", "/api/v1/images", s.handleListImages))
		r.Get("/images/{id}", metrics.InstrumentHandler("GET", "/api/v1/images/{id}", s.handleGetImage))
		r.Delete("/images/{id}", metrics.InstrumentHandler("DELETE", "/api/v1/images/{id}", s.handleDeleteImage))
		r.Post("/images/{id}/decode", metrics.InstrumentHandler("POST", "/api/v1/images/{id}/decode", s.handleDecodeImage))
	})

	// Swagger documentation (unprotected)
	r.Get("/swagger/*", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/swagger/", "/swagger/index.html":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(swaggerUI))
		case "/swagger/swagger.json":
			doc, err := swag.ReadDoc("swagger")
			if err != nil {
				s.logger.Error("failed to generate swagger doc", "error", err)
				http.Error(w, "Failed to generate Swagger documentation", http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(doc))
		default:
			http.NotFound(w, r)
		}
	})

	return r
}

// StartServer runs the HTTP server until ctx is cancelled
func StartServer(ctx context.Context, svc IStegoService, images IImageStore, config ServerConfig, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	addr := net.JoinHostPort(config.Bind, strconv.Itoa(config.Port))
	SwaggerInfo.Host = addr

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	metrics := NewMetrics(registry)

	server := NewServer(svc, images, config, metrics, logger)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(server, registry),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go server.startRetentionLoop(ctx, time.Minute)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting GhostShell REST API server", "addr", addr)
		logger.Info("metrics available", "url", fmt.Sprintf("http://%s/metrics", addr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return httpServer.Shutdown(shutdownCtx)
}
