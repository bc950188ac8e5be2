package registry

import (
	"github.com/dep2p/go-epmd/pkg/types"
)

// maxCreation creation 循环上限
const maxCreation = 3

// nextCreation 选取新注册的 creation
func (r *Registry) nextCreation(name string, prev types.NodeRecord, live bool) uint16 {
	if live {
		return cycle(prev.Creation)
	}
	if c, ok := r.remembered.Get(name); ok {
		return cycle(c)
	}
	return uint16(r.cfg.Clock.Now().Unix()%maxCreation) + 1
}

// cycle 1→2→3→1
func cycle(c uint16) uint16 {
	return c%maxCreation + 1
}
