/*
 * config_test.go, part of gobalance.
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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), "creb.yaml")
	require.NoError(t, os.WriteFile(name, []byte(content), 0o644))
	return name
}

func TestDefault(Te *testing.T) {
	Te.Setenv("NO_COLOR", "")
	C, err := Load("")
	require.NoError(Te, err)
	assert.Equal(Te, Default(), C)
	o := C.BalanceOptions()
	assert.Equal(Te, -1, o.Pivot)
	assert.False(Te, o.Integers)
}

func TestLoadFile(Te *testing.T) {
	name := writeFile(Te, `
log:
  level: debug
balance:
  integers: true
  pivot: 0
server:
  addr: "127.0.0.1:9000"
  read_timeout: 2s
output:
  format: json
`)
	C, err := Load(name)
	require.NoError(Te, err)
	assert.Equal(Te, "debug", C.Log.Level)
	assert.True(Te, C.Balance.Integers)
	assert.Equal(Te, 0, C.Balance.Pivot)
	assert.Equal(Te, "127.0.0.1:9000", C.Server.Addr)
	assert.Equal(Te, 2*time.Second, C.Server.ReadTimeout)
	assert.Equal(Te, 30*time.Second, C.Server.WriteTimeout)
	assert.Equal(Te, "json", C.Output.Format)
}

func TestLoadEmptyFile(Te *testing.T) {
	Te.Setenv("NO_COLOR", "")
	C, err := Load(writeFile(Te, ""))
	require.NoError(Te, err)
	assert.Equal(Te, Default(), C)
}

func TestLoadEnv(Te *testing.T) {
	Te.Setenv("CREB_PIVOT", "2")
	Te.Setenv("CREB_INTEGERS", "true")
	Te.Setenv("CREB_ADDR", ":9999")
	Te.Setenv("CREB_SHUTDOWN_TIMEOUT", "1m")
	Te.Setenv("NO_COLOR", "1")
	C, err := Load(writeFile(Te, "balance:\n  pivot: 0\n"))
	require.NoError(Te, err)
	assert.Equal(Te, 2, C.Balance.Pivot)
	assert.True(Te, C.Balance.Integers)
	assert.Equal(Te, ":9999", C.Server.Addr)
	assert.Equal(Te, time.Minute, C.Server.ShutdownTimeout)
	assert.False(Te, C.Output.Color)
}

func TestLoadErrors(Te *testing.T) {
	tests := []struct {
		name    string
		file    string
		env     map[string]string
		message string
	}{
		{"unknown key", "balance:\n  pivto: 1\n", nil, "pivto"},
		{"bad level", "log:\n  level: loud\n", nil, "log.level must be one of"},
		{"bad pivot", "balance:\n  pivot: -3\n", nil, "balance.pivot must be at least -1"},
		{"bad format", "output:\n  format: xml\n", nil, "output.format"},
		{"several", "server:\n  addr: \"\"\n  max_batch: 0\n", nil, "server.addr is required; server.maxbatch must be greater than 0"},
		{"env bool", "", map[string]string{"CREB_STRICT": "maybe"}, "CREB_STRICT"},
		{"env duration", "", map[string]string{"CREB_READ_TIMEOUT": "10"}, "not a duration"},
	}
	for _, tt := range tests {
		Te.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(writeFile(t, tt.file))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
	_, err := Load(filepath.Join(Te.TempDir(), "missing.yaml"))
	assert.Error(Te, err)
}
