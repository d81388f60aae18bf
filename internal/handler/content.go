package handler

import (
	"fmt"

	"github.com/l1jgo/lazytile/internal/content"
	"github.com/l1jgo/lazytile/internal/coord"
	"github.com/l1jgo/lazytile/internal/net"
	"github.com/l1jgo/lazytile/internal/net/packet"
	"github.com/l1jgo/lazytile/internal/persist"
	"go.uber.org/zap"
)

// readPlacement reads [D x][D y][S kind][S variant].
func readPlacement(r *packet.Reader) (coord.Coord, content.Descriptor, bool) {
	c := coord.Coord{X: r.ReadD(), Y: r.ReadD()}
	d := content.NewDescriptor(r.ReadS(), r.ReadS())
	return c, d, !r.Short()
}

// HandleAddContent processes C_ADD_CONTENT.
func HandleAddContent(sess *net.Session, r *packet.Reader, deps *Deps) {
	c, d, ok := readPlacement(r)
	if !ok {
		sendError(sess, packet.C_OPCODE_ADD_CONTENT, "truncated packet")
		return
	}
	if err := content.ValidateKind(d.Kind); err != nil {
		sendError(sess, packet.C_OPCODE_ADD_CONTENT, err.Error())
		return
	}

	// The placement is registered even if materializing it fails, so it is
	// journaled either way.
	err := deps.Manager.AddContent(c, d)
	record(deps, sess, persist.OpAdd, c, d)
	if err != nil {
		deps.Log.Warn("新增內容後生成失敗",
			zap.Uint64("session", sess.ID),
			zap.Stringer("coord", c),
			zap.Stringer("descriptor", d),
			zap.Error(err),
		)
		sendError(sess, packet.C_OPCODE_ADD_CONTENT, err.Error())
	}
}

// HandleRemoveContent processes C_REMOVE_CONTENT. Removing something that is
// not registered is silently ignored.
func HandleRemoveContent(sess *net.Session, r *packet.Reader, deps *Deps) {
	c, d, ok := readPlacement(r)
	if !ok {
		sendError(sess, packet.C_OPCODE_REMOVE_CONTENT, "truncated packet")
		return
	}
	if !deps.Manager.HasContent(c, d) {
		return
	}
	err := deps.Manager.RemoveContent(c, d)
	record(deps, sess, persist.OpRemove, c, d)
	if err != nil {
		deps.Log.Warn("移除內容後重建失敗", zap.Stringer("coord", c), zap.Error(err))
		sendError(sess, packet.C_OPCODE_REMOVE_CONTENT, err.Error())
	}
}

func record(deps *Deps, sess *net.Session, op string, c coord.Coord, d content.Descriptor) {
	if deps.Journal == nil {
		return
	}
	deps.Journal.Record(persist.JournalEntry{
		Op:         op,
		Coord:      c,
		Descriptor: d,
		Source:     fmt.Sprintf("session:%d", sess.ID),
	})
}
