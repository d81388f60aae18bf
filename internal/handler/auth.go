package handler

import (
	"github.com/l1jgo/lazytile/internal/net"
	"github.com/l1jgo/lazytile/internal/net/packet"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	authFailed byte = 0x00
	authOK     byte = 0x01
)

// HandleAuth processes C_AUTH.
// Format: [opcode][password\0]
func HandleAuth(sess *net.Session, r *packet.Reader, deps *Deps) {
	password := r.ReadS()
	hash := deps.Config.Feed.PasswordHash

	if hash != "" && bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		deps.Log.Warn("feed 驗證失敗", zap.Uint64("session", sess.ID), zap.String("ip", sess.IP))
		sendAuthResult(sess, authFailed)
		return
	}

	sess.SetState(packet.StateReady)
	deps.Log.Info("feed 驗證成功", zap.Uint64("session", sess.ID))
	sendAuthResult(sess, authOK)
}

func sendAuthResult(sess *net.Session, code byte) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_AUTH_RESULT)
	w.WriteC(code)
	sess.Send(w.Bytes())
}
