// Clueparty clue game
//
// One player hosts a room and receives a short 4-letter code; the others
// join with that code (typed, or scanned from the in-browser QR button).
// Everyone in a room sees a live player list, can change their nickname,
// and the host can start the game and pick a clue giver, either themselves
// or a random player.
//
// Features:
// - Single WebSocket endpoint: /clue/ws
// - Room codes are 4 uppercase letters, generated server-side with a
//   collision check against live rooms
// - Joins are case-insensitive; unknown codes are acked as "failure"
// - Full player-list broadcast on every membership or nickname change
// - Rooms are removed as soon as their last player leaves, and idle rooms
//   are reaped after a configurable timeout
// - In-browser QR button to share a room's join link, backed by go-qrcode

package main

import (
	_ "embed"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// serveWS upgrades the connection, greets it with server-ack, and runs its
// pumps until disconnect.
func serveWS(cfg *Config, d *dispatcher) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade error:", err)
			return
		}

		client := newClient(conn)

		logf(cfg, "GAMES: Connection %s opened from %s", client.id, realIP(r))

		d.connect(client)

		go client.writePump()
		client.readPump(cfg, d)
	}
}

// qrHandler generates a PNG QR code for a room's join URL, so a guest's
// phone lands on the join screen with the code prefilled.
func qrHandler(cfg *Config, path string) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		code := normalizeCode(ps.ByName("code"))
		if len(code) != codeLength {
			http.Error(w, "invalid room code", http.StatusBadRequest)
			return
		}

		// Derive scheme (respecting TLS and X-Forwarded-Proto if present).
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}

		url := scheme + "://" + r.Host + cfg.prefix + path + "?code=" + code

		const qrSize = 320 // mobile-friendly size
		png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(png)
	}
}

func statsHandler(reg *Registry) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		rooms, players := reg.Stats()

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]int{
			"rooms":   rooms,
			"players": players,
		})
	}
}

// ---- Static file paths ----

//go:embed assets/clue/index.html
var indexHTML []byte

//go:embed assets/clue/app.css
var clueCSS []byte

//go:embed assets/clue/app.js
var clueJS []byte

func staticHandler(cfg *Config, contentType string, data []byte) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		securityHeaders(cfg, w)

		_, _ = w.Write(data)
	}
}

// registerClueGame sets up routes so that:
//   - $path         → HTML client (host/join screens)
//   - $path/ws      → WebSocket carrying the game protocol
//   - $path/qr/:code → PNG QR code linking to the join screen
//   - $path/stats   → room/player counts
func registerClueGame(cfg *Config, path string, mux *httprouter.Router) {
	reg := newRegistry()
	if cfg.sessionTimeout > 0 {
		go reg.reaperLoop(cfg)
	}

	d := newDispatcher(cfg, reg)

	mux.GET(cfg.prefix+path, staticHandler(cfg, "text/html; charset=utf-8", indexHTML))

	// Shared assets (no room code in route)
	mux.GET(cfg.prefix+"/assets/clue/app.css", staticHandler(cfg, "text/css; charset=utf-8", clueCSS))
	mux.GET(cfg.prefix+"/assets/clue/app.js", staticHandler(cfg, "text/javascript; charset=utf-8", clueJS))

	mux.GET(cfg.prefix+path+"/ws", serveWS(cfg, d))

	mux.GET(cfg.prefix+path+"/qr/:code", qrHandler(cfg, path))

	mux.GET(cfg.prefix+path+"/stats", statsHandler(reg))
}

// redirectToGame points the home page at the clue client.
func redirectToGame(cfg *Config, path string) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		target := cfg.prefix + path
		if !strings.HasPrefix(target, "/") {
			target = "/" + target
		}
		http.Redirect(w, r, target, http.StatusTemporaryRedirect)
	}
}
