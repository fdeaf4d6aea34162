/*
 * handlers.go, part of gobalance.
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

package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	balance "github.com/rmera/gobalance"
	"github.com/rmera/gobalance/baljson"
)

// BatchRequest is the body of POST /api/balance/batch.
type BatchRequest struct {
	Requests []baljson.Request `json:"requests"`
}

// BatchResponse holds one result per request, in order.
type BatchResponse struct {
	Results []*baljson.Result `json:"results"`
	Failed  int               `json:"failed"`
}

// VerifyResponse is the answer to POST /api/verify.
type VerifyResponse struct {
	Equation string         `json:"equation"`
	Balanced bool           `json:"balanced"`
	Detail   string         `json:"detail,omitempty"` //why the equation is not balanced
	Error    *baljson.Error `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decode reads the JSON body of r into v, and writes the error response
// if that fails.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, function string, v any) bool {
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	err := dec.Decode(v)
	if err == nil {
		return true
	}
	status := http.StatusBadRequest
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		status = http.StatusRequestEntityTooLarge
	}
	writeJSON(w, status, &baljson.Result{Error: baljson.NewError(function, err)})
	return false
}

func missingEquation(function string) *baljson.Result {
	return &baljson.Result{Error: baljson.NewError(function, errors.New("request without equation"))}
}

// statusFor maps a balancing error to an HTTP status.
func statusFor(J *baljson.Result) int {
	if J.Error == nil {
		return http.StatusOK
	}
	return http.StatusUnprocessableEntity
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	var req baljson.Request
	if !s.decode(w, r, "handleBalance", &req) {
		return
	}
	if strings.TrimSpace(req.Equation) == "" {
		writeJSON(w, http.StatusBadRequest, missingEquation("handleBalance"))
		return
	}
	R, err := s.balancer(req.Options(s.base), r).Balance(req.Equation)
	J := baljson.NewResult(req.Equation, R, err)
	writeJSON(w, statusFor(J), J)
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if !s.decode(w, r, "handleBatch", &req) {
		return
	}
	if len(req.Requests) > s.cfg.MaxBatch {
		err := fmt.Errorf("%d requests in batch, the limit is %d", len(req.Requests), s.cfg.MaxBatch)
		writeJSON(w, http.StatusRequestEntityTooLarge, &baljson.Result{Error: baljson.NewError("handleBatch", err)})
		return
	}
	resp := &BatchResponse{Results: make([]*baljson.Result, len(req.Requests))}
	for i, q := range req.Requests {
		if strings.TrimSpace(q.Equation) == "" {
			resp.Results[i] = missingEquation("handleBatch")
			resp.Failed++
			continue
		}
		R, err := s.balancer(q.Options(s.base), r).Balance(q.Equation)
		resp.Results[i] = baljson.NewResult(q.Equation, R, err)
		if err != nil {
			resp.Failed++
		}
	}
	s.log.Debug("batch balanced", zap.Int("requests", len(req.Requests)), zap.Int("failed", resp.Failed))
	writeJSON(w, http.StatusOK, resp)
}

// handlePlot balances the equation and answers with a PNG bar chart of the atom balance.
func (s *Server) handlePlot(w http.ResponseWriter, r *http.Request) {
	var req baljson.Request
	if !s.decode(w, r, "handlePlot", &req) {
		return
	}
	if strings.TrimSpace(req.Equation) == "" {
		writeJSON(w, http.StatusBadRequest, missingEquation("handlePlot"))
		return
	}
	R, err := s.balancer(req.Options(s.base), r).Balance(req.Equation)
	if err != nil {
		J := baljson.NewResult(req.Equation, nil, err)
		writeJSON(w, statusFor(J), J)
		return
	}
	var buf bytes.Buffer
	if err := s.plot(&buf, R, "", "png"); err != nil {
		s.log.Error("plot failed", zap.String("equation", req.Equation), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, &baljson.Result{Input: req.Equation, Error: baljson.NewError("handlePlot", err)})
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(buf.Bytes())
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req baljson.Request
	if !s.decode(w, r, "handleVerify", &req) {
		return
	}
	if strings.TrimSpace(req.Equation) == "" {
		writeJSON(w, http.StatusBadRequest, missingEquation("handleVerify"))
		return
	}
	resp := &VerifyResponse{Equation: req.Equation}
	E, err := balance.Split(req.Equation)
	if err != nil {
		resp.Error = baljson.NewError("handleVerify", err)
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}
	if err := balance.Verify(E, nil); err != nil {
		var be *balance.Error
		if errors.As(err, &be) {
			resp.Detail = be.Message()
		} else {
			resp.Detail = err.Error()
		}
	} else {
		resp.Balanced = true
	}
	writeJSON(w, http.StatusOK, resp)
}
