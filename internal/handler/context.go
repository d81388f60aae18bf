package handler

import (
	"github.com/l1jgo/lazytile/internal/config"
	"github.com/l1jgo/lazytile/internal/lazy"
	"github.com/l1jgo/lazytile/internal/net"
	"github.com/l1jgo/lazytile/internal/net/packet"
	"github.com/l1jgo/lazytile/internal/persist"
	"github.com/l1jgo/lazytile/internal/viewport"
	"go.uber.org/zap"
)

// Journal receives content mutations made over the feed. Nil when the
// database is disabled.
type Journal interface {
	Record(e persist.JournalEntry)
}

// Deps holds shared dependencies injected into all packet handlers.
type Deps struct {
	Manager *lazy.Manager
	Camera  *viewport.Camera
	Journal Journal
	Config  *config.Config
	Log     *zap.Logger
}

// RegisterAll registers all packet handlers into the registry.
func RegisterAll(reg *packet.Registry, deps *Deps) {
	// Handshake phase
	reg.Register(packet.C_OPCODE_AUTH,
		[]packet.SessionState{packet.StateHandshake},
		func(sess any, r *packet.Reader) {
			HandleAuth(sess.(*net.Session), r, deps)
		},
	)

	ready := []packet.SessionState{packet.StateReady}

	reg.Register(packet.C_OPCODE_VIEWPORT, ready,
		func(sess any, r *packet.Reader) {
			HandleViewport(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_ADD_CONTENT, ready,
		func(sess any, r *packet.Reader) {
			HandleAddContent(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_REMOVE_CONTENT, ready,
		func(sess any, r *packet.Reader) {
			HandleRemoveContent(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_REFRESH, ready,
		func(sess any, r *packet.Reader) {
			HandleRefresh(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_QUERY, ready,
		func(sess any, r *packet.Reader) {
			HandleQuery(sess.(*net.Session), r, deps)
		},
	)
}

// sendError replies S_ERROR for the request opcode.
func sendError(sess *net.Session, op byte, msg string) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_ERROR)
	w.WriteC(op)
	w.WriteS(msg)
	sess.Send(w.Bytes())
}
