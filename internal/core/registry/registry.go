package registry

import (
	"fmt"
	"sort"

	"github.com/benbjohnson/clock"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dep2p/go-epmd/pkg/lib/log"
	"github.com/dep2p/go-epmd/pkg/types"
)

var logger = log.Logger("core/registry")

// ============================================================================
//                              配置
// ============================================================================

const (
	// DefaultRememberSize 记住已注销名称 creation 的数量
	DefaultRememberSize = 1000

	// DebugRememberSize 调试模式下的 LRU 容量，便于观察淘汰
	DebugRememberSize = 5
)

// Config 注册表配置
type Config struct {
	// MaxNodes 最大节点数，0 表示不限制
	MaxNodes int

	// RememberSize 已注销名称 LRU 容量
	RememberSize int

	// Clock 时钟，用于为新名称选取初始 creation
	Clock clock.Clock
}

// DefaultConfig 默认注册表配置
func DefaultConfig() Config {
	return Config{
		RememberSize: DefaultRememberSize,
		Clock:        clock.New(),
	}
}

// ============================================================================
//                              Registry 实现
// ============================================================================

// Registry 节点注册表
type Registry struct {
	cfg   Config
	nodes map[string]types.NodeRecord

	// remembered 已注销名称 -> 最后的 creation
	remembered *lru.Cache[string, uint16]
}

// Stats 注册表统计
type Stats struct {
	Nodes      int
	Remembered int
}

// New 创建注册表
func New(cfg Config) (*Registry, error) {
	if cfg.RememberSize <= 0 {
		cfg.RememberSize = DefaultRememberSize
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}

	remembered, err := lru.New[string, uint16](cfg.RememberSize)
	if err != nil {
		return nil, fmt.Errorf("create creation cache: %w", err)
	}

	return &Registry{
		cfg:        cfg,
		nodes:      make(map[string]types.NodeRecord),
		remembered: remembered,
	}, nil
}

// Register 注册或替换同名节点，返回分配的 creation
//
// 传入记录的 Creation 字段被忽略。
func (r *Registry) Register(rec types.NodeRecord) (uint16, error) {
	if err := types.ValidateNodeName(rec.Name); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidName, err)
	}

	prev, live := r.nodes[rec.Name]
	if !live && r.cfg.MaxNodes > 0 && len(r.nodes) >= r.cfg.MaxNodes {
		return 0, fmt.Errorf("%w: %d nodes", ErrRegistryFull, len(r.nodes))
	}

	rec = rec.Clone()
	rec.Creation = r.nextCreation(rec.Name, prev, live)
	r.nodes[rec.Name] = rec
	r.remembered.Remove(rec.Name)

	logger.Debug("节点已注册", "name", rec.Name, "port", rec.Port, "creation", rec.Creation, "replaced", live)
	return rec.Creation, nil
}

// Lookup 按名称查找节点
func (r *Registry) Lookup(name string) (types.NodeRecord, bool) {
	rec, ok := r.nodes[name]
	if !ok {
		return types.NodeRecord{}, false
	}
	return rec.Clone(), true
}

// Remove 注销节点，返回是否存在
func (r *Registry) Remove(name string) bool {
	rec, ok := r.nodes[name]
	if !ok {
		return false
	}
	delete(r.nodes, name)
	r.remembered.Add(name, rec.Creation)

	logger.Debug("节点已注销", "name", name, "creation", rec.Creation)
	return true
}

// List 返回按名称排序的全部节点
func (r *Registry) List() []types.NodeRecord {
	out := make([]types.NodeRecord, 0, len(r.nodes))
	for _, rec := range r.nodes {
		out = append(out, rec.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len 返回节点数
func (r *Registry) Len() int {
	return len(r.nodes)
}

// Kill 清空注册表
//
// relaxed 为 true 时无条件清空；否则仅当注册表已为空时成功。
func (r *Registry) Kill(relaxed bool) bool {
	if !relaxed && len(r.nodes) > 0 {
		logger.Info("拒绝清空：仍有活跃节点", "nodes", len(r.nodes))
		return false
	}
	for name := range r.nodes {
		r.Remove(name)
	}
	return true
}

// Stats 返回统计信息
func (r *Registry) Stats() Stats {
	return Stats{
		Nodes:      len(r.nodes),
		Remembered: r.remembered.Len(),
	}
}
