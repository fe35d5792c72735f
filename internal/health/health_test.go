// SPDX-License-Identifier: MIT

package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(context.Context) error   { return nil }
func fail(context.Context) error { return errors.New("down") }

func TestHealth_NoChecksUnlessVerbose(t *testing.T) {
	m := NewManager("v1.0.0")
	m.RegisterChecker(NewFuncChecker("backend", false, fail))

	resp := m.Health(context.Background(), false)
	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Nil(t, resp.Checks)

	resp = m.Health(context.Background(), true)
	assert.Equal(t, StatusUnhealthy, resp.Status)
	assert.Equal(t, "down", resp.Checks["backend"].Error)
}

func TestReady(t *testing.T) {
	tests := []struct {
		name     string
		checkers []Checker
		status   Status
		ready    bool
	}{
		{"none", nil, StatusHealthy, true},
		{"all healthy", []Checker{NewFuncChecker("a", false, ok), NewFuncChecker("b", true, ok)}, StatusHealthy, true},
		{"optional down", []Checker{NewFuncChecker("a", false, ok), NewFuncChecker("cache", true, fail)}, StatusDegraded, true},
		{"required down", []Checker{NewFuncChecker("backend", false, fail), NewFuncChecker("cache", true, fail)}, StatusUnhealthy, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager("v")
			for _, c := range tt.checkers {
				m.RegisterChecker(c)
			}
			resp := m.Ready(context.Background())
			assert.Equal(t, tt.status, resp.Status)
			assert.Equal(t, tt.ready, resp.Ready)
			assert.Len(t, resp.Checks, len(tt.checkers))
		})
	}
}

func TestServeReady(t *testing.T) {
	m := NewManager("v")
	m.RegisterChecker(NewFuncChecker("backend", false, fail))

	rec := httptest.NewRecorder()
	m.ServeReady(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.False(t, resp.Ready)

	rec = httptest.NewRecorder()
	m.ServeHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"backend"}, m.Names())
}
