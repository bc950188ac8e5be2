package client

import "errors"

var (
	// ErrUnexpectedResponse 响应无法解码
	ErrUnexpectedResponse = errors.New("client: unexpected response")

	// ErrRegistrationRejected 守护进程拒绝注册
	ErrRegistrationRejected = errors.New("client: registration rejected")
)
