/*
 * server_test.go, part of gobalance.
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
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	balance "github.com/rmera/gobalance"
	"github.com/rmera/gobalance/baljson"
	"github.com/rmera/gobalance/internal/config"
)

func newTestServer(t *testing.T, mod func(*config.Config)) (*Server, *observer.ObservedLogs) {
	t.Helper()
	cfg := config.Default()
	if mod != nil {
		mod(cfg)
	}
	core, logs := observer.New(zap.DebugLevel)
	return NewServer(cfg, zap.New(core)), logs
}

func post(s http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestHealth(Te *testing.T) {
	s, logs := newTestServer(Te, nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(Te, http.StatusOK, rec.Code)
	assert.JSONEq(Te, `{"status":"ok"}`, rec.Body.String())
	entries := logs.FilterMessage("request").All()
	require.Len(Te, entries, 1)
	assert.Equal(Te, "/health", entries[0].ContextMap()["path"])
	assert.EqualValues(Te, http.StatusOK, entries[0].ContextMap()["status"])
}

func TestBalanceEndpoint(Te *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		want   string
		kind   string
	}{
		{"rational", `{"equation":"H2 + O2 = H2O"}`, http.StatusOK, "(H2) + 1/2 (O2) = (H2O)", ""},
		{"integers", `{"equation":"N2 + H2 = NH3","integers":true}`, http.StatusOK, "(N2) + 3 (H2) = 2 (NH3)", ""},
		{"pivot", `{"equation":"N2 + H2 = NH3","pivot":0}`, http.StatusOK, "(N2) + 3 (H2) = 2 (NH3)", ""},
		{"unconservable", `{"equation":"H2 = O2"}`, http.StatusUnprocessableEntity, "", "unconservable reaction"},
		{"ambiguous", `{"equation":"H2 + O2 + Na + Cl2 = H2O + NaCl"}`, http.StatusUnprocessableEntity, "", "ambiguous balance"},
		{"malformed", `{"equation":"H2 + = H2O"}`, http.StatusUnprocessableEntity, "", "malformed equation"},
	}
	s, _ := newTestServer(Te, nil)
	for _, tt := range tests {
		Te.Run(tt.name, func(t *testing.T) {
			rec := post(s, "/api/balance", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			var J baljson.Result
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &J))
			assert.Equal(t, tt.want, J.Balanced)
			if tt.kind != "" {
				require.NotNil(t, J.Error)
				assert.Equal(t, tt.kind, J.Error.Kind)
			} else {
				assert.Nil(t, J.Error)
			}
		})
	}
}

func TestBalanceEndpointDefaults(Te *testing.T) {
	s, _ := newTestServer(Te, func(c *config.Config) { c.Balance.Integers = true })
	rec := post(s, "/api/balance", `{"equation":"H2 + O2 = H2O"}`)
	require.Equal(Te, http.StatusOK, rec.Code)
	var J baljson.Result
	require.NoError(Te, json.Unmarshal(rec.Body.Bytes(), &J))
	assert.Equal(Te, "2 (H2) + (O2) = 2 (H2O)", J.Balanced)
}

func TestBadRequests(Te *testing.T) {
	s, _ := newTestServer(Te, func(c *config.Config) { c.Server.MaxBodyBytes = 64 })
	assert.Equal(Te, http.StatusBadRequest, post(s, "/api/balance", `{"equation":`).Code)
	assert.Equal(Te, http.StatusBadRequest, post(s, "/api/balance", `{"equation":"  "}`).Code)
	assert.Equal(Te, http.StatusBadRequest, post(s, "/api/balance", `{"equation":"H2 = H2","color":true}`).Code)
	long := `{"equation":"` + strings.Repeat("H2 + ", 20) + `O2 = H2O"}`
	assert.Equal(Te, http.StatusRequestEntityTooLarge, post(s, "/api/balance", long).Code)

	req := httptest.NewRequest(http.MethodPost, "/api/balance", strings.NewReader(`{"equation":"H2 = H2"}`))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(Te, http.StatusUnsupportedMediaType, rec.Code)

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/balance", nil))
	assert.Equal(Te, http.StatusMethodNotAllowed, rec.Code)
}

func TestBatchEndpoint(Te *testing.T) {
	s, _ := newTestServer(Te, func(c *config.Config) { c.Server.MaxBatch = 3 })
	rec := post(s, "/api/balance/batch", `{"requests":[
		{"equation":"H2 + O2 = H2O","integers":true},
		{"equation":"H2 = O2"},
		{"equation":""}]}`)
	require.Equal(Te, http.StatusOK, rec.Code)
	var resp BatchResponse
	require.NoError(Te, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(Te, resp.Results, 3)
	assert.Equal(Te, 2, resp.Failed)
	assert.Equal(Te, "2 (H2) + (O2) = 2 (H2O)", resp.Results[0].Balanced)
	assert.Equal(Te, "unconservable reaction", resp.Results[1].Error.Kind)
	assert.True(Te, resp.Results[2].Error.InIO)

	rec = post(s, "/api/balance/batch", `{"requests":[{"equation":"H2 = H2"},{"equation":"H2 = H2"},{"equation":"H2 = H2"},{"equation":"H2 = H2"}]}`)
	assert.Equal(Te, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestVerifyEndpoint(Te *testing.T) {
	s, _ := newTestServer(Te, nil)
	tests := []struct {
		body     string
		status   int
		balanced bool
		detail   string
	}{
		{`{"equation":"2 H2 + O2 = 2 H2O"}`, http.StatusOK, true, ""},
		{`{"equation":"H2 + O2 = H2O"}`, http.StatusOK, false, "O (2 vs 1)"},
		{`{"equation":"H2 + O2 ="}`, http.StatusUnprocessableEntity, false, ""},
	}
	for _, tt := range tests {
		rec := post(s, "/api/verify", tt.body)
		assert.Equal(Te, tt.status, rec.Code, tt.body)
		var resp VerifyResponse
		require.NoError(Te, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(Te, tt.balanced, resp.Balanced, tt.body)
		assert.Contains(Te, resp.Detail, tt.detail)
	}
}

func TestPlotEndpoint(Te *testing.T) {
	s, _ := newTestServer(Te, nil)
	rec := post(s, "/api/balance/plot", `{"equation":"CH4 + O2 = CO2 + H2O"}`)
	require.Equal(Te, http.StatusOK, rec.Code)
	assert.Equal(Te, "image/png", rec.Header().Get("Content-Type"))
	assert.True(Te, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))

	rec = post(s, "/api/balance/plot", `{"equation":"H2 = O2"}`)
	assert.Equal(Te, http.StatusUnprocessableEntity, rec.Code)
}

func TestPlotEndpointFailure(Te *testing.T) {
	s, logs := newTestServer(Te, nil)
	s.plot = func(out io.Writer, R *balance.Result, title, format string) error {
		out.Write([]byte("\x89PNG")) //partial output must not reach the client
		return errors.New("no fonts")
	}
	rec := post(s, "/api/balance/plot", `{"equation":"CH4 + O2 = CO2 + H2O"}`)
	assert.Equal(Te, http.StatusInternalServerError, rec.Code)
	assert.Equal(Te, "application/json", rec.Header().Get("Content-Type"))
	var J baljson.Result
	require.NoError(Te, json.Unmarshal(rec.Body.Bytes(), &J))
	require.NotNil(Te, J.Error)
	assert.Equal(Te, "no fonts", J.Error.Message)
	assert.Len(Te, logs.FilterMessage("plot failed").All(), 1)
}
