package metrics

// Reporter 服务端调用的指标记录接口
//
// 所有方法都必须是非阻塞的。
type Reporter interface {
	// ConnOpened 接受新连接
	ConnOpened()

	// ConnClosed 连接关闭
	ConnClosed()

	// ConnEvicted 连接因空闲超时被关闭
	ConnEvicted()

	// Request 处理了一帧请求
	Request(op string)

	// AcceptError accept 失败
	AcceptError(kind string)

	// SetNodes 更新注册节点数
	SetNodes(n int)

	// LogRecvMessage 记录接收字节数
	LogRecvMessage(int64)

	// LogSentMessage 记录发送字节数
	LogSentMessage(int64)
}

// Nop 不记录任何指标
type Nop struct{}

var _ Reporter = Nop{}

func (Nop) ConnOpened()          {}
func (Nop) ConnClosed()          {}
func (Nop) ConnEvicted()         {}
func (Nop) Request(string)       {}
func (Nop) AcceptError(string)   {}
func (Nop) SetNodes(int)         {}
func (Nop) LogRecvMessage(int64) {}
func (Nop) LogSentMessage(int64) {}
