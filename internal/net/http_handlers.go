// Package net mounts the HTTP surface: health/diagnostics endpoints, pprof
// debug routes, static client serving, and the /ws upgrade into the
// Session Gateway.
//
// Grounded on the teacher's internal/net/http_handlers.go route table and
// registerPprofHandlers helper, generalized from the real-time world's
// /join, /resubscribe, /world/reset, /effects/catalog routes (all dropped,
// since this domain has no equivalent) to a room/matchmaking-oriented
// surface: the Session Gateway owns per-connection protocol handling, so
// this layer only needs /health, /rooms, pprof, and /ws.
package net

import (
	"encoding/json"
	"log"
	nethttp "net/http"
	"net/http/pprof"

	"duelserver/internal/gateway"
	"duelserver/internal/net/proto"
	"duelserver/internal/net/ws"
	"duelserver/internal/observability"
	"duelserver/internal/telemetry"
)

// HTTPHandlerConfig bundles the inputs the top-level HTTP mux needs.
type HTTPHandlerConfig struct {
	ClientDir     string
	Logger        telemetry.Logger
	Observability observability.Config
}

// NewHTTPHandler builds the full HTTP mux for the server: ambient ops
// routes (health, pprof), a read-only room listing, static client
// serving, and the /ws upgrade wired to gw.
func NewHTTPHandler(gw *gateway.Gateway, cfg HTTPHandlerConfig) nethttp.Handler {
	stdLogger := log.Default()

	mux := nethttp.NewServeMux()

	registerPprofHandlers(mux, cfg.Observability.EnablePprofTrace)

	mux.HandleFunc("/health", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/rooms", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodGet {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}
		rooms := gw.Rooms.List(true)
		list := make([]proto.RoomInfo, 0, len(rooms))
		for _, room := range rooms {
			info := proto.RoomInfo{RoomID: room.ID, Status: string(room.Status)}
			for _, p := range room.Players {
				info.Players = append(info.Players, proto.ParticipantInfo{
					DisplayName:  p.DisplayName,
					Ready:        p.Ready,
					Disconnected: p.Disconnected,
				})
			}
			list = append(list, info)
		}
		data, err := json.Marshal(struct {
			Rooms []proto.RoomInfo `json:"rooms"`
		}{Rooms: list})
		if err != nil {
			httpError(w, "failed to encode", nethttp.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})

	wsHandler := ws.NewHandler(ws.Config{Gateway: gw, Logger: stdLogger})
	mux.Handle("/ws", wsHandler)

	if cfg.ClientDir != "" {
		fs := nethttp.FileServer(nethttp.Dir(cfg.ClientDir))
		mux.Handle("/", fs)
	}

	return mux
}

func httpError(w nethttp.ResponseWriter, msg string, code int) {
	nethttp.Error(w, msg, code)
}

func registerPprofHandlers(mux *nethttp.ServeMux, enableTrace bool) {
	mux.HandleFunc("/debug/pprof/", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.URL.Path != "/debug/pprof/" {
			nethttp.NotFound(w, r)
			return
		}
		pprof.Index(w, r)
	})

	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)

	profiles := []string{"allocs", "block", "goroutine", "heap", "mutex", "threadcreate"}
	for _, name := range profiles {
		mux.Handle("/debug/pprof/"+name, pprof.Handler(name))
	}

	if enableTrace {
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
		return
	}

	mux.HandleFunc("/debug/pprof/trace", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		httpError(w, "pprof trace disabled", nethttp.StatusNotFound)
	})
}
