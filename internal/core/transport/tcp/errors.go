package tcp

import "errors"

// ErrNoListeners 没有任何地址绑定成功
var ErrNoListeners = errors.New("tcp: no usable listen address")
