// Package hostlink lets an embedding page drive the engine's host signals over
// a websocket. Each JSON message updates one latch; the engine picks it up on
// its next frame like any other host input.
package hostlink

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"backdrop/hal"

	"github.com/gorilla/websocket"
)

// Signal types.
const (
	TypeResize     = "resize"
	TypePointer    = "pointer"
	TypeVisibility = "visibility"
	TypeMotion     = "motion"
	TypeClick      = "click"
	TypeWheel      = "wheel"
)

// Signal is one message from the page.
type Signal struct {
	Type string `json:"type"`

	// resize
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	DPR    float64 `json:"dpr,omitempty"`

	// pointer
	X     float64 `json:"x,omitempty"`
	Y     float64 `json:"y,omitempty"`
	Touch bool    `json:"touch,omitempty"`

	// wheel; positive is away from the user
	Notches float64 `json:"notches,omitempty"`

	// visibility, motion
	Visible *bool `json:"visible,omitempty"`
	Reduced *bool `json:"reduced,omitempty"`
}

// Reply acknowledges a signal.
type Reply struct {
	Type  string `json:"type"`
	Seq   uint64 `json:"seq,omitempty"`
	Error string `json:"error,omitempty"`
}

var ErrBadSignal = errors.New("hostlink: bad signal")

// Apply publishes s into h's latches and returns the latch sequence.
func Apply(h hal.HAL, s Signal) (uint64, error) {
	switch s.Type {
	case TypeResize:
		if s.Width <= 0 || s.Height <= 0 {
			return 0, fmt.Errorf("%w: resize %vx%v", ErrBadSignal, s.Width, s.Height)
		}
		dpr := s.DPR
		if dpr <= 0 {
			dpr = 1
		}
		return h.Display().Viewport().Publish(hal.Viewport{Width: s.Width, Height: s.Height, DeviceScale: dpr}), nil
	case TypePointer:
		return h.Input().Pointer().Publish(hal.PointerSample{X: s.X, Y: s.Y, Touch: s.Touch}), nil
	case TypeClick:
		return h.Input().Gestures().Update(func(g hal.Gestures) hal.Gestures { return g.Add(1, 0) }), nil
	case TypeWheel:
		if s.Notches == 0 {
			return 0, fmt.Errorf("%w: wheel without notches", ErrBadSignal)
		}
		return h.Input().Gestures().Update(func(g hal.Gestures) hal.Gestures { return g.Add(0, s.Notches) }), nil
	case TypeVisibility:
		if s.Visible == nil {
			return 0, fmt.Errorf("%w: visibility without visible", ErrBadSignal)
		}
		return h.Display().Visibility().Publish(*s.Visible), nil
	case TypeMotion:
		if s.Reduced == nil {
			return 0, fmt.Errorf("%w: motion without reduced", ErrBadSignal)
		}
		return h.Input().ReducedMotion().Publish(*s.Reduced), nil
	}
	return 0, fmt.Errorf("%w: unknown type %q", ErrBadSignal, s.Type)
}

// Server upgrades requests to websockets and applies incoming signals.
type Server struct {
	h        hal.HAL
	upgrader websocket.Upgrader
}

// NewServer returns a handler publishing into h.
func NewServer(h hal.HAL) *Server {
	return &Server{
		h: h,
		upgrader: websocket.Upgrader{
			// The link is meant for a page embedding the engine on any origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (s *Server) logf(format string, args ...any) {
	if l := s.h.Logger(); l != nil {
		l.WriteLineString("backdrop: hostlink: " + fmt.Sprintf(format, args...))
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logf("warn: upgrade: %v", err)
		return
	}
	defer conn.Close()
	s.logf("page connected from %s", r.RemoteAddr)

	for {
		var sig Signal
		if err := conn.ReadJSON(&sig); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logf("warn: read: %v", err)
			}
			return
		}
		seq, err := Apply(s.h, sig)
		reply := Reply{Type: "ack", Seq: seq}
		if err != nil {
			reply = Reply{Type: "error", Error: err.Error()}
		}
		if err := conn.WriteJSON(reply); err != nil {
			s.logf("warn: write: %v", err)
			return
		}
	}
}

// ListenAndServe serves the link on addr at /signals until ctx is done.
func ListenAndServe(ctx context.Context, addr string, h hal.HAL) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("hostlink: %w", err)
	}
	return Serve(ctx, ln, h)
}

// Serve is ListenAndServe over an existing listener.
func Serve(ctx context.Context, ln net.Listener, h hal.HAL) error {
	mux := http.NewServeMux()
	mux.Handle("/signals", NewServer(h))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("hostlink: %w", err)
	}
	return nil
}
