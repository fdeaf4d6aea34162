/*
 * server.go, part of gobalance.
 *
 * Copyright 2024 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

//Package api is the HTTP interface of crebd.
package api

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	balance "github.com/rmera/gobalance"
	"github.com/rmera/gobalance/balplot"
	"github.com/rmera/gobalance/internal/config"
)

// Server is the HTTP API server for crebd.
type Server struct {
	router chi.Router
	base   balance.Options
	log    *zap.Logger
	cfg    config.Server
	plot   func(out io.Writer, R *balance.Result, title, format string) error
}

// NewServer creates and configures the HTTP server. Requests are balanced with the
// options in cfg.Balance unless they ask otherwise.
func NewServer(cfg *config.Config, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		base: *cfg.BalanceOptions(),
		log:  log,
		cfg:  cfg.Server,
		plot: balplot.WriteBarChart,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		r.Post("/balance", s.handleBalance)
		r.Post("/balance/batch", s.handleBatch)
		r.Post("/balance/plot", s.handlePlot)
		r.Post("/verify", s.handleVerify)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// balancer returns a Balancer for one request.
func (s *Server) balancer(o *balance.Options, r *http.Request) *balance.Balancer {
	return balance.NewBalancer(o, s.log.With(zap.String("request_id", middleware.GetReqID(r.Context()))))
}
