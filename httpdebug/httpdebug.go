// Package httpdebug serves a read-only fasthttp endpoint exposing peer and
// queue state.
package httpdebug

import (
	"encoding/json"
	"strings"

	"github.com/valyala/fasthttp"

	bus1 "github.com/ailidani/bus1"
	"github.com/ailidani/bus1/internal/log"
)

// Server exposes bus1.Directory contents over HTTP for inspection: the
// entry count at "/" and a peer's clock/ready state at "/peer/<id>".
// Objects and handles are not served. It never mutates anything it serves.
type Server struct {
	dir  *bus1.Directory
	addr string
}

// New returns a debug server reading from dir, listening on addr (":8080"
// form).
func New(dir *bus1.Directory, addr string) *Server {
	return &Server{dir: dir, addr: addr}
}

// ListenAndServe blocks serving the debug endpoint. It only returns on a
// listener error, which it returns to the caller without logging it.
func (s *Server) ListenAndServe() error {
	handler := func(ctx *fasthttp.RequestCtx) {
		path := string(ctx.Path())
		switch {
		case path == "/":
			s.handleIndex(ctx)
		case strings.HasPrefix(path, "/peer/"):
			s.handlePeer(ctx, strings.TrimPrefix(path, "/peer/"))
		default:
			ctx.Error("not found", fasthttp.StatusNotFound)
		}
	}

	log.Infof("httpdebug server starting on %s", s.addr)
	return fasthttp.ListenAndServe(s.addr, handler)
}

func (s *Server) handleIndex(ctx *fasthttp.RequestCtx) {
	ctx.SetContentType("application/json")
	json.NewEncoder(ctx).Encode(map[string]interface{}{
		"entries": s.dir.Len(),
	})
}

type peerView struct {
	ID    string `json:"id"`
	Clock int64  `json:"clock"`
	Ready bool   `json:"ready"`
}

func (s *Server) handlePeer(ctx *fasthttp.RequestCtx, id string) {
	p, ok := s.dir.Peer(bus1.ID(id))
	if !ok {
		ctx.Error("unknown peer", fasthttp.StatusNotFound)
		return
	}

	view := peerView{
		ID:    id,
		Clock: p.Distq().Clock(),
		Ready: p.Distq().Poll(),
	}

	ctx.SetContentType("application/json")
	if err := json.NewEncoder(ctx).Encode(view); err != nil {
		log.Errorf("httpdebug: encode peer %s: %v", id, err)
	}
}
