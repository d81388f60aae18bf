package handler

import (
	"github.com/l1jgo/lazytile/internal/coord"
	"github.com/l1jgo/lazytile/internal/net"
	"github.com/l1jgo/lazytile/internal/net/packet"
)

// HandleQuery processes C_QUERY: [D x][D y]. The reply carries manager stats
// and every descriptor registered at the coordinate with its live flag.
func HandleQuery(sess *net.Session, r *packet.Reader, deps *Deps) {
	c := coord.Coord{X: r.ReadD(), Y: r.ReadD()}
	if r.Short() {
		sendError(sess, packet.C_OPCODE_QUERY, "truncated packet")
		return
	}
	st := deps.Manager.Stats()
	ds := deps.Manager.ContentAt(c)
	if len(ds) > 0xFFFF {
		ds = ds[:0xFFFF]
	}

	w := packet.NewWriterWithOpcode(packet.S_OPCODE_QUERY_RESULT)
	w.WriteD(int32(st.Entries))
	w.WriteD(int32(st.Active))
	w.WriteD(int32(st.Instances))
	w.WriteD(c.X)
	w.WriteD(c.Y)
	w.WriteH(uint16(len(ds)))
	for _, d := range ds {
		w.WriteS(d.String())
		if _, live := deps.Manager.GetInstance(c, d); live {
			w.WriteC(1)
		} else {
			w.WriteC(0)
		}
	}
	sess.Send(w.Bytes())
}
