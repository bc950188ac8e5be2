package conn

import (
	"context"
)

// readBufferSize 单次读取的最大字节数
const readBufferSize = 4096

// Event 读 goroutine 发往事件循环的消息
//
// Err 非空表示连接已不可读（对端关闭或读错误），之后不会再有事件。
type Event struct {
	Conn *Conn
	Data []byte
	Err  error
}

// ReadLoop 持续读取套接字并投递事件，直到读错误或 ctx 取消
//
// 只访问不可变的底层套接字，不触碰 Conn 的其他状态。
func (c *Conn) ReadLoop(ctx context.Context, events chan<- Event) {
	for {
		buf := make([]byte, readBufferSize)
		n, err := c.nc.Read(buf)
		if n > 0 {
			select {
			case events <- Event{Conn: c, Data: buf[:n]}:
			case <-ctx.Done():
				return
			}
		}
		if err != nil {
			select {
			case events <- Event{Conn: c, Err: err}:
			case <-ctx.Done():
			}
			return
		}
	}
}
