// Package devserver serves the development output with live reload.
package devserver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.DevServer = (*Server)(nil)

const (
	// ReloadPath is the websocket endpoint live-reload clients connect to.
	ReloadPath = "/livereload"
	// ScriptPath serves the live-reload client script.
	ScriptPath = "/livereload.js"
	// ReloadMessage is broadcast to clients after a rebuild.
	ReloadMessage = "reload"

	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second
	writeTimeout      = time.Second
)

const clientScript = `(function () {
  var scheme = location.protocol === 'https:' ? 'wss://' : 'ws://';
  var socket = new WebSocket(scheme + location.host + '` + ReloadPath + `');
  socket.onmessage = function (event) {
    if (event.data === '` + ReloadMessage + `') {
      location.reload();
    }
  };
})();
`

var scriptTag = []byte(`<script src="` + ScriptPath + `"></script>`)

// Server is a static file server for the output directory with a websocket
// live-reload channel.
type Server struct {
	logger   ports.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	done    chan struct{}
	err     error
}

// NewServer creates a new dev server.
func NewServer(logger ports.Logger) *Server {
	return &Server{
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// Start binds port and serves dir until ctx is done. Port 0 picks a free port.
func (s *Server) Start(ctx context.Context, dir string, port int) (string, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return "", errors.Join(domain.ErrServerBind, zerr.With(err, "port", port))
	}

	bound := port
	if addr, ok := ln.Addr().(*net.TCPAddr); ok {
		bound = addr.Port
	}
	url := fmt.Sprintf("http://localhost:%d", bound)

	srv := &http.Server{
		Handler:           s.Handler(dir),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	done := make(chan struct{})
	s.mu.Lock()
	s.done = done
	s.err = nil
	s.mu.Unlock()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ln)
	}()

	go func() {
		defer close(done)

		var failure error
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer cancel()
			s.closeClients()
			failure = srv.Shutdown(shutdownCtx)
			<-serveErr
		case err := <-serveErr:
			if !errors.Is(err, http.ErrServerClosed) {
				failure = zerr.With(zerr.Wrap(err, "dev server stopped"), "url", url)
			}
			s.closeClients()
		}

		s.mu.Lock()
		s.err = failure
		s.mu.Unlock()
	}()

	return url, nil
}

// Wait blocks until the server has shut down.
func (s *Server) Wait() error {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done == nil {
		return nil
	}
	<-done

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Reload tells every connected client to reload. Clients that cannot be
// written to are dropped.
func (s *Server) Reload(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for conn := range s.clients {
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, []byte(ReloadMessage)); err != nil {
			delete(s.clients, conn)
			_ = conn.Close()
		}
	}
	return nil
}

// Clients returns the number of connected live-reload clients.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Handler returns the HTTP handler serving dir.
func (s *Server) Handler(dir string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(ReloadPath, s.serveSocket)
	mux.HandleFunc(ScriptPath, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		_, _ = w.Write([]byte(clientScript))
	})
	mux.Handle("/", &staticHandler{dir: dir})
	return mux
}

func (s *Server) serveSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("live-reload upgrade failed: " + err.Error())
		return
	}

	s.mu.Lock()
	s.clients[conn] = struct{}{}
	s.mu.Unlock()

	// Clients never send anything; reading detects the close.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.mu.Lock()
				delete(s.clients, conn)
				s.mu.Unlock()
				_ = conn.Close()
				return
			}
		}
	}()
}

func (s *Server) closeClients() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.clients {
		_ = conn.Close()
		delete(s.clients, conn)
	}
}

// staticHandler serves files from dir, falling back to the index document
// for unknown routes. HTML responses get the live-reload script.
type staticHandler struct {
	dir string
}

func (h *staticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := filepath.Join(h.dir, filepath.FromSlash(path.Clean("/"+r.URL.Path)))

	info, err := os.Stat(name)
	switch {
	case err == nil && info.IsDir():
		name = filepath.Join(name, domain.IndexFileName)
		if _, err := os.Stat(name); err != nil {
			name = filepath.Join(h.dir, domain.IndexFileName)
		}
	case err != nil:
		name = filepath.Join(h.dir, domain.IndexFileName)
	}

	if !strings.EqualFold(filepath.Ext(name), ".html") {
		http.ServeFile(w, r, name)
		return
	}

	content, err := os.ReadFile(name)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(InjectScript(content))
}

// InjectScript adds the live-reload script tag before the closing body tag,
// or at the end of the document when there is none.
func InjectScript(document []byte) []byte {
	idx := bytes.LastIndex(bytes.ToLower(document), []byte("</body>"))
	if idx < 0 {
		return append(bytes.Clone(document), scriptTag...)
	}
	out := make([]byte, 0, len(document)+len(scriptTag))
	out = append(out, document[:idx]...)
	out = append(out, scriptTag...)
	out = append(out, document[idx:]...)
	return out
}

// Noop is the production reloader; it has no clients to notify.
type Noop struct{}

var _ ports.Reloader = Noop{}

// Reload does nothing.
func (Noop) Reload(context.Context) error { return nil }
