package client

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/dep2p/go-epmd/pkg/protocol"
	"github.com/dep2p/go-epmd/pkg/types"
)

// DefaultTimeout 未设置 ctx 截止时间时单个请求的超时
const DefaultTimeout = 5 * time.Second

// Client 守护进程客户端
type Client struct {
	addr    string
	timeout time.Duration
	dialer  net.Dialer
}

// Option 客户端选项
type Option func(*Client)

// WithTimeout 设置默认超时
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// New 创建客户端，addr 为 host:port
func New(addr string, opts ...Option) *Client {
	c := &Client{addr: addr, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewLocal 创建连接本机指定端口的客户端
func NewLocal(port uint16, opts ...Option) *Client {
	return New(net.JoinHostPort("127.0.0.1", strconv.Itoa(int(port))), opts...)
}

// Addr 返回守护进程地址
func (c *Client) Addr() string {
	return c.addr
}

// ============================================================================
//                              请求
// ============================================================================

// Registration 一次成功的注册，持有注册连接
type Registration struct {
	Creation uint16
	conn     net.Conn
}

// Close 关闭注册连接
func (r *Registration) Close() error {
	return r.conn.Close()
}

// Register 注册节点并保持连接
func (c *Client) Register(ctx context.Context, node types.NodeRecord) (*Registration, error) {
	nc, payload, err := c.exchange(ctx, protocol.NewAlive2Request(node))
	if err != nil {
		return nil, err
	}

	resp, err := protocol.DecodeAlive2Response(payload)
	if err != nil {
		_ = nc.Close()
		return nil, fmt.Errorf("%w: %w", ErrUnexpectedResponse, err)
	}
	if resp.Result != 0 {
		_ = nc.Close()
		return nil, fmt.Errorf("%w: result %d", ErrRegistrationRejected, resp.Result)
	}

	// 注册连接长期保持，清除 exchange 设置的截止时间
	_ = nc.SetDeadline(time.Time{})
	return &Registration{Creation: resp.Creation, conn: nc}, nil
}

// Port2 查询节点，未注册时 found 为 false
func (c *Client) Port2(ctx context.Context, name string) (node types.NodeRecord, found bool, err error) {
	payload, err := c.roundTrip(ctx, protocol.NewPort2Request(name))
	if err != nil {
		return types.NodeRecord{}, false, err
	}
	resp, err := protocol.DecodePort2Response(payload)
	if err != nil {
		return types.NodeRecord{}, false, fmt.Errorf("%w: %w", ErrUnexpectedResponse, err)
	}
	if resp.Result != 0 {
		return types.NodeRecord{}, false, nil
	}
	return resp.Node, true, nil
}

// Names 列出已注册节点
func (c *Client) Names(ctx context.Context) (protocol.NamesResponse, error) {
	payload, err := c.roundTrip(ctx, protocol.NewNamesRequest())
	if err != nil {
		return protocol.NamesResponse{}, err
	}
	resp, err := protocol.DecodeNamesResponse(payload)
	if err != nil {
		return protocol.NamesResponse{}, fmt.Errorf("%w: %w", ErrUnexpectedResponse, err)
	}
	return resp, nil
}

// Dump 列出节点详情
func (c *Client) Dump(ctx context.Context) (protocol.DumpResponse, error) {
	payload, err := c.roundTrip(ctx, protocol.NewDumpRequest())
	if err != nil {
		return protocol.DumpResponse{}, err
	}
	resp, err := protocol.DecodeDumpResponse(payload)
	if err != nil {
		return protocol.DumpResponse{}, fmt.Errorf("%w: %w", ErrUnexpectedResponse, err)
	}
	return resp, nil
}

// Kill 请求清空注册表，返回是否被接受
func (c *Client) Kill(ctx context.Context) (bool, error) {
	payload, err := c.roundTrip(ctx, protocol.NewKillRequest())
	if err != nil {
		return false, err
	}
	resp, err := protocol.DecodeKillResponse(payload)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrUnexpectedResponse, err)
	}
	return resp.OK, nil
}

// Stop 强制注销节点
func (c *Client) Stop(ctx context.Context, name string) (protocol.StopResult, error) {
	payload, err := c.roundTrip(ctx, protocol.NewStopRequest(name))
	if err != nil {
		return protocol.StopRefused, err
	}
	resp, err := protocol.DecodeStopResponse(payload)
	if err != nil {
		return protocol.StopRefused, fmt.Errorf("%w: %w", ErrUnexpectedResponse, err)
	}
	return resp.Result, nil
}

// ============================================================================
//                              传输
// ============================================================================

// roundTrip 发送请求、读取一帧响应并关闭连接
func (c *Client) roundTrip(ctx context.Context, req protocol.Request) ([]byte, error) {
	nc, payload, err := c.exchange(ctx, req)
	if err != nil {
		return nil, err
	}
	_ = nc.Close()
	return payload, nil
}

// exchange 发送请求并读取一帧响应，成功时连接保持打开
func (c *Client) exchange(ctx context.Context, req protocol.Request) (net.Conn, []byte, error) {
	frame, err := protocol.EncodeRequest(req)
	if err != nil {
		return nil, nil, err
	}

	nc, err := c.dialer.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return nil, nil, fmt.Errorf("dial %s: %w", c.addr, err)
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.timeout)
	}
	_ = nc.SetDeadline(deadline)

	if err := protocol.WriteFrame(nc, frame); err != nil {
		_ = nc.Close()
		return nil, nil, err
	}
	payload, err := protocol.ReadFrame(nc)
	if err != nil {
		_ = nc.Close()
		return nil, nil, err
	}
	return nc, payload, nil
}
