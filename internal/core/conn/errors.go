package conn

import "errors"

// ErrConnClosed 连接已关闭
var ErrConnClosed = errors.New("conn: connection closed")
