package handler

import (
	"github.com/l1jgo/lazytile/internal/coord"
	"github.com/l1jgo/lazytile/internal/net"
	"github.com/l1jgo/lazytile/internal/net/packet"
	"go.uber.org/zap"
)

// HandleRefresh processes C_REFRESH: [C scope] then [D x][D y] for a single
// coordinate.
func HandleRefresh(sess *net.Session, r *packet.Reader, deps *Deps) {
	var err error
	switch scope := r.ReadC(); scope {
	case packet.RefreshAll:
		err = deps.Manager.Refresh()
	case packet.RefreshCoord:
		c := coord.Coord{X: r.ReadD(), Y: r.ReadD()}
		if r.Short() {
			sendError(sess, packet.C_OPCODE_REFRESH, "truncated packet")
			return
		}
		err = deps.Manager.RefreshCoord(c)
	default:
		sendError(sess, packet.C_OPCODE_REFRESH, "unknown refresh scope")
		return
	}
	if err != nil {
		deps.Log.Warn("重新整理失敗", zap.Uint64("session", sess.ID), zap.Error(err))
		sendError(sess, packet.C_OPCODE_REFRESH, err.Error())
	}
}
