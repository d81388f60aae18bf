package handler

import (
	"math"

	"github.com/l1jgo/lazytile/internal/coord"
	"github.com/l1jgo/lazytile/internal/net"
	"github.com/l1jgo/lazytile/internal/net/packet"
	"go.uber.org/zap"
)

// HandleViewport processes C_VIEWPORT: [F x][F y][F w][F h] in world pixels.
// The camera publishes the new view; the manager applies it at PostUpdate
// subject to the throttle.
func HandleViewport(sess *net.Session, r *packet.Reader, deps *Deps) {
	rect := coord.Rect{
		X: float64(r.ReadF()),
		Y: float64(r.ReadF()),
		W: float64(r.ReadF()),
		H: float64(r.ReadF()),
	}
	if r.Short() || !finite(rect.X, rect.Y, rect.W, rect.H) || rect.W <= 0 || rect.H <= 0 {
		deps.Log.Debug("無效視窗封包", zap.Uint64("session", sess.ID), zap.Any("rect", rect))
		sendError(sess, packet.C_OPCODE_VIEWPORT, "invalid viewport")
		return
	}
	deps.Camera.SetView(rect)
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
