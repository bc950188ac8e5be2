// Package registry 维护已注册节点的内存表
//
// Registry 不加锁，只能由服务端事件循环所在的单个 goroutine 访问，
// 其他 goroutine 需要通过事件循环的查询通道读取。
//
// # Creation 分配
//
// 同名节点重新注册时，creation 在 1→2→3→1 之间循环，
// 使持有旧连接的对端能察觉节点已重启。
// 名称被注销后其最后的 creation 记在一个有界 LRU 中；
// 从未见过的名称使用 (unix 秒 % 3) + 1。
package registry
