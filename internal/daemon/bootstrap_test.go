// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ManuGH/stbbridge/internal/config"
	"github.com/ManuGH/stbbridge/internal/player"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type fakeBridge struct {
	connects    atomic.Int32
	disconnects atomic.Int32
}

func (b *fakeBridge) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/session", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			b.disconnects.Add(1)
		} else {
			b.connects.Add(1)
		}
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/api/boxes", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"box1","name":"Living room","state":"ONLINE_STANDBY"}]`))
	})
	mux.HandleFunc("/api/channels", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"title":"NPO 1 HD","number":1},{"title":"RTL 4 HD","number":4}]`))
	})
	mux.HandleFunc("/api/recording_capacity", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"capacity":37.5}`))
	})
	return mux
}

func testConfig(bridgeURL string) config.AppConfig {
	cfg := config.Defaults()
	cfg.Version = "test"
	cfg.Backend.URL = bridgeURL
	cfg.Backend.MaxRetries = 0
	cfg.API.ListenAddr = "127.0.0.1:0"
	cfg.API.ShutdownTimeout = 2 * time.Second
	cfg.Store.Backend = "memory"
	cfg.Cache.Backend = "memory"
	return cfg
}

func runApp(t *testing.T, app *App) (string, func()) {
	t.Helper()
	app.reloadSignal = nil
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	select {
	case <-app.Manager().Ready():
	case <-time.After(2 * time.Second):
		cancel()
		t.Fatal("app did not become ready")
	}
	return "http://" + app.Manager().Addr(), func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("app did not stop")
		}
	}
}

func getJSON(t *testing.T, client *http.Client, url string, v any) int {
	t.Helper()
	resp, err := client.Get(url)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	if v != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func TestBootstrap_WithAccount(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	bridge := &fakeBridge{}
	srv := httptest.NewServer(bridge.handler())
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Provider = config.ProviderArris
	cfg.Country = "nl"
	cfg.Username = "alice"
	cfg.Password = "secret"
	cfg.OmitChannelQuality = true

	app, err := Bootstrap(context.Background(), config.NewHolder(cfg, nil))
	require.NoError(t, err)
	base, stop := runApp(t, app)

	client := &http.Client{Timeout: 2 * time.Second}
	var players []player.Status
	require.Equal(t, http.StatusOK, getJSON(t, client, base+"/api/players", &players))
	require.Len(t, players, 1)
	assert.Equal(t, player.StateOff, players[0].State)
	assert.Equal(t, []string{"NPO 1", "RTL 4"}, players[0].SourceList)
	require.NotNil(t, players[0].Attributes.RecordingCapacity)
	assert.InDelta(t, 37.5, *players[0].Attributes.RecordingCapacity, 0.001)

	assert.Equal(t, http.StatusOK, getJSON(t, client, base+"/api/sensors/recording_capacity", nil))
	assert.Equal(t, http.StatusOK, getJSON(t, client, base+"/readyz", nil))
	client.CloseIdleConnections()

	stop()
	assert.Equal(t, int32(1), bridge.connects.Load())
	assert.Equal(t, int32(1), bridge.disconnects.Load())
}

func TestBootstrap_SkipsCapacityForGB(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	srv := httptest.NewServer((&fakeBridge{}).handler())
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Provider = config.ProviderHorizon
	cfg.Country = "gb"
	cfg.Username = "bob"
	cfg.Password = "secret"

	app, err := Bootstrap(context.Background(), config.NewHolder(cfg, nil))
	require.NoError(t, err)
	base, stop := runApp(t, app)

	client := &http.Client{Timeout: 2 * time.Second}
	assert.Equal(t, http.StatusNotFound, getJSON(t, client, base+"/api/sensors/recording_capacity", nil))
	client.CloseIdleConnections()
	stop()
}

func TestBootstrap_WithoutAccount(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	bridge := &fakeBridge{}
	srv := httptest.NewServer(bridge.handler())
	defer srv.Close()

	app, err := Bootstrap(context.Background(), config.NewHolder(testConfig(srv.URL), nil))
	require.NoError(t, err)
	base, stop := runApp(t, app)

	client := &http.Client{Timeout: 2 * time.Second}
	var players []player.Status
	require.Equal(t, http.StatusOK, getJSON(t, client, base+"/api/players", &players))
	assert.Empty(t, players)
	client.CloseIdleConnections()
	stop()

	assert.Zero(t, bridge.connects.Load())
	assert.Zero(t, bridge.disconnects.Load())
}

func TestBootstrap_ConnectFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"denied"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Provider = config.ProviderHorizon
	cfg.Username = "mallory"
	cfg.Password = "wrong"

	_, err := Bootstrap(context.Background(), config.NewHolder(cfg, nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect account mallory")
}
