// Package protocol 实现端口映射守护进程的二进制线路协议
//
// 本包只包含纯函数，不持有任何连接或注册表状态，
// 服务端事件循环与 pkg/client 共用同一套编解码。
//
// # 帧格式
//
// 每个请求和响应都是一帧：2 字节大端长度前缀 + 恰好该长度的负载。
// 所有多字节整数均为大端序。
//
//	+--------+--------+-----------------------------+
//	|  len (u16, BE)  |  payload (len bytes)        |
//	+--------+--------+-----------------------------+
//
// # 请求
//
//	120 Alive2  port:u16 node_type:u8 protocol:u8 high:u16 low:u16
//	            name_len:u16 name extra_len:u16 extra
//	122 Port2   name（剩余全部字节，UTF-8）
//	110 Names   （空）
//	100 Dump    （空）
//	107 Kill    （空）
//	115 Stop    name（剩余全部字节，UTF-8）
//
// DecodeRequest 从不返回错误也从不 panic：短帧、子长度越界、
// 非法 UTF-8 名称、未知操作码一律解码为 no-op 哨兵请求，
// 服务端对 no-op 不写任何响应，也不修改注册表。
//
// # 响应
//
//	121 Alive2Resp  result:u8 creation:u16
//	119 Port2Resp   result:u8 [port node_type protocol high low name_len name extra_len extra]
//	    NamesResp   epmd_port:u32 + "name <name> at port <port>\n" ...
//	    DumpResp    epmd_port:u32 + "name <name> at port <port>, creation <c>, <state>\n" ...
//	    KillResp    "OK" | "NO"
//	    StopResp    "STOPPED" | "NOEXIST" | "NO"
//
// 每种响应都有对应的 Decode 函数，满足 decode(encode(v)) == v。
// Port2Resp 不携带 creation，该字段只写不读。
package protocol
