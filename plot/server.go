// Package plot implements the live benchmark plot server: a websocket
// endpoint that streams timing samples to a browser as they're produced,
// and the static page that renders them as a line plot.
package plot

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Sample is one (scale, strategy, elapsed) benchmark data point.
type Sample struct {
	Scale     int     `json:"scale"`
	Strategy  string  `json:"strategy"`
	ElapsedMS float64 `json:"elapsedMs"`
}

// Server serves the live plot page at "/plots/0/index.html" and a
// websocket endpoint at "/ws" that every connected browser tab receives
// Push'd samples on.
type Server struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

// NewServer constructs a Server with origin checks relaxed; the plot
// page is localhost-only dev tooling.
func NewServer() *Server {
	return &Server{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]bool),
	}
}

// Push broadcasts s to every currently connected browser tab, dropping
// (and closing) any connection that errors on write.
func (srv *Server) Push(s Sample) {
	data, err := json.Marshal(s)
	if err != nil {
		log.Printf("plot: marshal sample: %v", err)
		return
	}
	srv.mu.Lock()
	defer srv.mu.Unlock()
	for conn := range srv.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			conn.Close()
			delete(srv.clients, conn)
		}
	}
}

// ListenAndServe registers the plot page and websocket handlers on addr
// (conventionally "localhost:8991") and blocks serving them.
func (srv *Server) ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/plots/0/index.html", srv.serveIndex)
	mux.HandleFunc("/ws", srv.serveWS)
	return http.ListenAndServe(addr, mux)
}

func (srv *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := srv.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("plot: upgrade: %v", err)
		return
	}
	srv.mu.Lock()
	srv.clients[conn] = true
	srv.mu.Unlock()
}

func (srv *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(indexHTML))
}

const indexHTML = `<!DOCTYPE html>
<html>
<head><title>recql benchmark</title></head>
<body>
<canvas id="plot" width="800" height="400"></canvas>
<script>
  const ctx = document.getElementById("plot").getContext("2d");
  const series = {};
  const colors = ["#e74c3c", "#2980b9", "#27ae60", "#8e44ad"];
  const ws = new WebSocket("ws://" + location.host + "/ws");
  ws.onmessage = (ev) => {
    const sample = JSON.parse(ev.data);
    if (!series[sample.strategy]) series[sample.strategy] = [];
    series[sample.strategy].push(sample);
    redraw();
  };
  function redraw() {
    ctx.clearRect(0, 0, 800, 400);
    let i = 0;
    for (const strategy in series) {
      ctx.strokeStyle = colors[i++ % colors.length];
      ctx.beginPath();
      series[strategy].forEach((s, idx) => {
        const x = 40 + idx * 40;
        const y = 380 - Math.min(s.elapsedMs, 360);
        idx === 0 ? ctx.moveTo(x, y) : ctx.lineTo(x, y);
      });
      ctx.stroke();
    }
  }
</script>
</body>
</html>`
