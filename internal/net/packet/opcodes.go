package packet

// Client → server.
const (
	C_OPCODE_AUTH           byte = 0x01 // [S password]
	C_OPCODE_VIEWPORT       byte = 0x02 // [F x][F y][F w][F h]
	C_OPCODE_ADD_CONTENT    byte = 0x03 // [D x][D y][S kind][S variant]
	C_OPCODE_REMOVE_CONTENT byte = 0x04 // [D x][D y][S kind][S variant]
	C_OPCODE_REFRESH        byte = 0x05 // [C scope: 0 = all, 1 = one coord][D x][D y]
	C_OPCODE_QUERY          byte = 0x06 // [D x][D y] → S_QUERY_RESULT
)

// Server → client.
const (
	S_OPCODE_AUTH_RESULT  byte = 0x81 // [C ok]
	S_OPCODE_QUERY_RESULT byte = 0x82 // [D entries][D active][D instances][D x][D y][H n]{[S descriptor][C live]}
	S_OPCODE_ERROR        byte = 0x83 // [C request opcode][S message]
)

// Refresh scopes carried by C_OPCODE_REFRESH.
const (
	RefreshAll   byte = 0
	RefreshCoord byte = 1
)
