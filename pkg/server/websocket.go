package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/vroute/pkg/loader"
	"github.com/vango-dev/vroute/pkg/router"
	"github.com/vango-dev/vroute/pkg/view"
)

// Frame types sent on /ws.
const (
	FrameMount      = "mount"
	FrameError      = "error"
	FrameSuperseded = "superseded"
)

// navigateRequest is the JSON form of an incoming frame.
type navigateRequest struct {
	Path    string         `json:"path"`
	Replace bool           `json:"replace,omitempty"`
	Params  map[string]any `json:"params,omitempty"`
}

// layerFrame is one mounted layer.
type layerFrame struct {
	ID          string `json:"id"`
	Pattern     string `json:"pattern"`
	Remainder   string `json:"remainder,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	ETag        string `json:"etag,omitempty"`
	Body        string `json:"body,omitempty"`
}

// frame is an outgoing message.
type frame struct {
	Type      string            `json:"type"`
	Requested string            `json:"requested,omitempty"`
	Path      string            `json:"path,omitempty"`
	Query     string            `json:"query,omitempty"`
	Fragment  string            `json:"fragment,omitempty"`
	Layers    []layerFrame      `json:"layers,omitempty"`
	Params    map[string]string `json:"params,omitempty"`
	Redirects []string          `json:"redirects,omitempty"`
	NotFound  bool              `json:"notFound,omitempty"`
	Replace   bool              `json:"replace,omitempty"`
	Error     string            `json:"error,omitempty"`
	Code      string            `json:"code,omitempty"`
}

// wsConn serializes writes to one WebSocket connection and renders
// navigations onto it.
type wsConn struct {
	conn         *websocket.Conn
	writeTimeout time.Duration
	mu           sync.Mutex
}

func (c *wsConn) write(f frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	return c.conn.WriteJSON(f)
}

// Mount implements router.Renderer.
func (c *wsConn) Mount(ctx context.Context, v *router.View) error {
	f := frame{
		Type:      FrameMount,
		Requested: v.Requested,
		Path:      v.Path,
		Query:     v.Query,
		Fragment:  v.Fragment,
		Params:    v.Params,
		Redirects: v.Redirects,
		NotFound:  v.NotFound,
		Replace:   v.Replace,
	}
	for _, l := range v.Layers {
		lf := layerFrame{ID: l.ID, Pattern: l.Pattern, Remainder: l.Remainder}
		if m, ok := l.Unit.(*view.Module); ok {
			lf.ContentType = m.ContentType
			lf.ETag = m.ETag
			lf.Body = string(m.Body)
		}
		f.Layers = append(f.Layers, lf)
	}
	return c.write(f)
}

// MountError implements router.Renderer.
func (c *wsConn) MountError(ctx context.Context, path string, err error) error {
	return c.write(errorFrame(path, err))
}

func errorFrame(path string, err error) frame {
	f := frame{Type: FrameError, Path: path, Error: err.Error()}
	var coded interface{ ErrorCode() string }
	if errors.As(err, &coded) {
		f.Code = coded.ErrorCode()
	}
	return f
}

// parseRequest reads a frame as JSON or as a bare path.
func parseRequest(msg []byte) (navigateRequest, error) {
	text := strings.TrimSpace(string(msg))
	if strings.HasPrefix(text, "{") {
		var req navigateRequest
		if err := json.Unmarshal([]byte(text), &req); err != nil {
			return req, err
		}
		if req.Path == "" {
			return req, errors.New("missing path")
		}
		return req, nil
	}
	if text == "" {
		return navigateRequest{}, errors.New("empty frame")
	}
	return navigateRequest{Path: text}, nil
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	s.conns.Add(1)
	defer s.conns.Done()
	defer conn.Close()

	ws := &wsConn{conn: conn, writeTimeout: s.config.WSWriteTimeout}
	nav := s.navigator(ws)
	logger := s.logger.With("remote", r.RemoteAddr)

	ctx, cancel := context.WithCancel(context.Background())
	var inflight sync.WaitGroup
	defer func() {
		cancel()
		inflight.Wait()
	}()

	go func() {
		select {
		case <-s.closing:
			ws.mu.Lock()
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(time.Second))
			ws.mu.Unlock()
			conn.Close()
		case <-ctx.Done():
		}
	}()

	conn.SetReadLimit(s.config.WSReadLimit)
	for {
		conn.SetReadDeadline(time.Now().Add(s.config.WSIdleTimeout))
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				logger.Error("read error", "error", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		req, err := parseRequest(msg)
		if err != nil {
			ws.write(frame{Type: FrameError, Error: "invalid navigation: " + err.Error()})
			continue
		}

		opts := []router.NavigateOption{router.WithParams(req.Params)}
		if req.Replace {
			opts = append(opts, router.WithReplace())
		}
		inflight.Add(1)
		go func() {
			defer inflight.Done()
			s.navigate(ctx, ws, nav, req.Path, opts)
		}()
	}
}

// navigate runs one navigation and reports the outcomes the renderer does
// not see.
func (s *Server) navigate(ctx context.Context, ws *wsConn, nav *router.Navigator, path string, opts []router.NavigateOption) {
	_, err := nav.Navigate(ctx, path, opts...)
	if err == nil {
		return
	}
	var loadErr *loader.LoadError
	switch {
	case errors.Is(err, router.ErrSuperseded):
		ws.write(frame{Type: FrameSuperseded, Requested: path})
	case errors.As(err, &loadErr):
		// Already reported through MountError.
	case errors.Is(err, context.Canceled):
	default:
		if werr := ws.write(errorFrame(path, err)); werr != nil {
			s.logger.Debug("write error frame failed", "error", werr)
		}
	}
}
