// Package server serves the monitor page, its websocket, state and metrics.
package server

import (
	"context"
	"io/fs"
	"net/http"
	"regexp"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"

	"github.com/soar/padmapper/internal/engine"
	"github.com/soar/padmapper/internal/gamepad"
	"github.com/soar/padmapper/internal/hub"
	"github.com/soar/padmapper/internal/logging"
)

// Engine is the part of the engine the server talks to.
type Engine interface {
	hub.Controller
	Snapshot() engine.Snapshot
}

// InputInfo reports the controller being read.
type InputInfo interface {
	Info() gamepad.DeviceInfo
}

type Server struct {
	hub         *hub.Hub
	broadcaster *hub.Broadcaster
	engine      Engine
	input       InputInfo
	gatherer    prometheus.Gatherer
	frontendFS  fs.FS
	addr        string
	httpServer  *http.Server
	log         *zerolog.Logger
}

func New(h *hub.Hub, b *hub.Broadcaster, e Engine, input InputInfo, g prometheus.Gatherer, frontendFS fs.FS, addr string) *Server {
	return &Server{
		hub:         h,
		broadcaster: b,
		engine:      e,
		input:       input,
		gatherer:    g,
		frontendFS:  frontendFS,
		addr:        addr,
		log:         logging.Subsystem("http"),
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/ws", handleWebSocket(s.hub, s.broadcaster, s.engine, s.log))
	mux.HandleFunc("/api/state", handleState(s.engine, s.input, s.hub))
	mux.HandleFunc("/api/save", handleSave(s.engine))
	mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	// Static files, minified on the way out
	m := minify.New()
	m.AddFunc("text/html", html.Minify)
	m.AddFunc("text/css", css.Minify)
	m.AddFuncRegexp(regexp.MustCompile("^(application|text)/(x-)?(java|ecma)script$"), js.Minify)
	mux.Handle("/", m.Middleware(http.FileServer(http.FS(s.frontendFS))))

	return mux
}

func (s *Server) ListenAndServe() error {
	s.httpServer = &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}

	s.log.Info().Str("addr", s.addr).Msg("HTTP server listening")
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		s.log.Info().Msg("shutting down HTTP server")
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
