package server

import (
	"errors"

	"github.com/dep2p/go-epmd/internal/core/conn"
	"github.com/dep2p/go-epmd/internal/core/registry"
	"github.com/dep2p/go-epmd/pkg/lib/log"
	"github.com/dep2p/go-epmd/pkg/protocol"
	"github.com/dep2p/go-epmd/pkg/types"
)

// ============================================================================
//                              请求处理
// ============================================================================

// outcome 单个请求的处理结果
type outcome struct {
	resp   []byte
	close  bool
	killed bool
}

// handleFrame 处理一帧请求，返回是否应停止服务
func (s *Server) handleFrame(c *conn.Conn, frame []byte) bool {
	req := protocol.DecodeRequest(frame)
	s.reporter.Request(req.Op.String())

	if req.IsNoop() {
		logger.Debug("忽略无效请求", "conn", log.TruncateID(c.ID(), 8), "size", len(frame))
		return false
	}

	var out outcome
	switch req.Op {
	case protocol.OpAlive2Req:
		out = s.handleAlive2(c, req)
	case protocol.OpPort2Req:
		out = s.handlePort2(req)
	case protocol.OpNamesReq:
		out = s.handleNames()
	case protocol.OpDumpReq:
		out = s.handleDump()
	case protocol.OpKillReq:
		out = s.handleKill(c)
	case protocol.OpStopReq:
		out = s.handleStop(c, req)
	}

	if d := s.cfg.DelayWrite.Duration(); d > 0 {
		s.clock.Sleep(d)
	}
	if err := c.Write(out.resp); err != nil {
		logger.Debug("写响应失败", "conn", log.TruncateID(c.ID(), 8), "op", req.Op, "err", err)
		s.closeConn(c)
		return out.killed
	}
	s.reporter.LogSentMessage(int64(len(out.resp) + protocol.FrameHeaderSize))

	if out.close {
		s.closeConn(c)
	}
	return out.killed
}

// handleAlive2 注册节点；成功后连接成为长连接
func (s *Server) handleAlive2(c *conn.Conn, req protocol.Request) outcome {
	node := req.Node
	node.Owner = c.ID()

	creation, err := s.reg.Register(node)
	if err != nil {
		if errors.Is(err, registry.ErrRegistryFull) {
			logger.Warn("注册表已满，拒绝注册", "name", node.Name)
		} else {
			logger.Debug("拒绝注册", "name", node.Name, "err", err)
		}
		return outcome{resp: protocol.Alive2Response{Result: 1}.Encode(), close: true}
	}

	c.SetKeep()
	s.reporter.SetNodes(s.reg.Len())
	logger.Info("节点注册", "name", node.Name, "port", node.Port, "type", node.NodeType, "creation", creation)
	return outcome{resp: protocol.Alive2Response{Creation: creation}.Encode()}
}

// handlePort2 查询节点端口
func (s *Server) handlePort2(req protocol.Request) outcome {
	rec, ok := s.reg.Lookup(req.Name)
	if !ok {
		return outcome{resp: protocol.Port2Response{Result: 1}.Encode(), close: true}
	}
	return outcome{resp: protocol.Port2Response{Node: rec}.Encode(), close: true}
}

// handleNames 列出节点名称与端口
func (s *Server) handleNames() outcome {
	resp := protocol.NamesResponse{EpmdPort: uint32(s.epmdPort)}
	for _, rec := range s.reg.List() {
		resp.Nodes = append(resp.Nodes, protocol.NameEntry{Name: rec.Name, Port: rec.Port})
	}
	return outcome{resp: resp.Encode(), close: true}
}

// handleDump 列出节点详情，注册连接仍打开的为 active
func (s *Server) handleDump() outcome {
	resp := protocol.DumpResponse{EpmdPort: uint32(s.epmdPort)}
	for _, rec := range s.reg.List() {
		state := types.NodeStateDetached
		if owner, ok := s.conns[rec.Owner]; ok && owner.IsOpen() {
			state = types.NodeStateActive
		}
		resp.Nodes = append(resp.Nodes, protocol.DumpEntry{
			Name:     rec.Name,
			Port:     rec.Port,
			Creation: rec.Creation,
			State:    state,
		})
	}
	return outcome{resp: resp.Encode(), close: true}
}

// handleKill 清空注册表
func (s *Server) handleKill(c *conn.Conn) outcome {
	relaxed := s.cfg.RelaxedCommandCheck
	if !relaxed && !c.IsLocal() {
		logger.Warn("拒绝远端 Kill", "remote", c.RemoteAddr())
		return outcome{resp: protocol.KillResponse{}.Encode(), close: true}
	}

	ok := s.reg.Kill(relaxed)
	s.reporter.SetNodes(s.reg.Len())
	if !ok {
		return outcome{resp: protocol.KillResponse{}.Encode(), close: true}
	}

	logger.Info("注册表已清空", "exit", s.cfg.ExitOnKill)
	return outcome{
		resp:   protocol.KillResponse{OK: true}.Encode(),
		close:  true,
		killed: s.cfg.ExitOnKill,
	}
}

// handleStop 强制注销节点
func (s *Server) handleStop(c *conn.Conn, req protocol.Request) outcome {
	if !s.cfg.RelaxedCommandCheck && !c.IsLocal() {
		logger.Warn("拒绝远端 Stop", "remote", c.RemoteAddr(), "name", req.Name)
		return outcome{resp: protocol.StopResponse{Result: protocol.StopRefused}.Encode(), close: true}
	}

	if !s.reg.Remove(req.Name) {
		return outcome{resp: protocol.StopResponse{Result: protocol.StopNoExist}.Encode(), close: true}
	}
	s.reporter.SetNodes(s.reg.Len())
	logger.Info("节点已强制注销", "name", req.Name)
	return outcome{resp: protocol.StopResponse{Result: protocol.StopStopped}.Encode(), close: true}
}
