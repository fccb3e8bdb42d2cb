package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"filterchat/internal/config"
	"filterchat/internal/domain"
	"filterchat/internal/repository"
	"filterchat/internal/repository/memory"
	"filterchat/pkg/logger"

	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// filterServer - набор фейковых фильтров на одном httptest-сервере
type filterServer struct {
	*httptest.Server
	calls atomic.Int64
}

func newFilterServer(t *testing.T) *filterServer {
	t.Helper()
	fs := &filterServer{}

	mux := http.NewServeMux()
	mux.HandleFunc("/upper", textHandler(&fs.calls, strings.ToUpper))
	mux.HandleFunc("/exclaim", textHandler(&fs.calls, func(s string) string { return s + "!" }))
	mux.HandleFunc("/render", textHandler(&fs.calls, func(s string) string {
		return base64.StdEncoding.EncodeToString([]byte("IMG:" + s))
	}))
	mux.HandleFunc("/fail", func(w http.ResponseWriter, r *http.Request) {
		fs.calls.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	mux.HandleFunc("/no-value", func(w http.ResponseWriter, r *http.Request) {
		fs.calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result":"x"}`))
	})
	mux.HandleFunc("/not-json", func(w http.ResponseWriter, r *http.Request) {
		fs.calls.Add(1)
		_, _ = w.Write([]byte(`<html>`))
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		fs.calls.Add(1)
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	mux.HandleFunc("/reverse", func(w http.ResponseWriter, r *http.Request) {
		fs.calls.Add(1)
		body, _ := io.ReadAll(r.Body)
		out := make([]byte, len(body))
		for i, b := range body {
			out[len(body)-1-i] = b
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(out)
	})
	mux.HandleFunc("/caption", func(w http.ResponseWriter, r *http.Request) {
		fs.calls.Add(1)
		body, _ := io.ReadAll(r.Body)
		_, _ = w.Write([]byte("caption of " + string(bytes.TrimSpace(body))))
	})

	fs.Server = httptest.NewServer(mux)
	t.Cleanup(fs.Close)
	return fs
}

func textHandler(calls *atomic.Int64, transform func(string) string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		body, err := io.ReadAll(r.Body)
		if err != nil || !gjson.ValidBytes(body) {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		out, _ := sjson.SetBytes([]byte(`{}`), "value", transform(gjson.GetBytes(body, "value").String()))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(out)
	}
}

func (fs *filterServer) filter(path string, in, out domain.ValueType) *domain.Filter {
	return &domain.Filter{
		Name:        strings.TrimPrefix(path, "/"),
		ExternalURL: fs.URL + path,
		InputType:   in,
		OutputType:  out,
	}
}

type testEnv struct {
	store    *memory.Store
	repos    *repository.Repositories
	server   *filterServer
	services *Services
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.NewStore()
	server := newFilterServer(t)
	cfg := &config.Config{
		JWT:     config.JWTConfig{Secret: "test-secret"},
		Filters: config.FiltersConfig{Timeout: 200 * time.Millisecond, MaxResponseBytes: 1 << 20},
	}
	log := logger.Nop()
	invoker := NewHTTPInvokerWithClient(server.Client(), cfg.Filters, log)
	repos := memory.NewRepositories(store)

	return &testEnv{
		store:    store,
		repos:    repos,
		server:   server,
		services: NewServicesWithInvoker(repos, cfg, invoker, log),
	}
}

func (e *testEnv) putFilter(path string, in, out domain.ValueType) *domain.Filter {
	return e.store.PutFilter(e.server.filter(path, in, out))
}

func (e *testEnv) putValue(t *testing.T, v domain.Value) *domain.Value {
	t.Helper()
	id, err := e.services.Values.Put(context.Background(), v.Type, v.Content)
	require.NoError(t, err)
	return &domain.Value{ID: id, Type: v.Type, Content: v.Content}
}
