package server

import (
	"context"
	"errors"

	"go.uber.org/fx"

	"github.com/dep2p/go-epmd/config"
	"github.com/dep2p/go-epmd/internal/core/metrics"
)

// Params Server 依赖参数
type Params struct {
	fx.In

	Config     *config.Config   `optional:"true"`
	Reporter   metrics.Reporter `optional:"true"`
	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
}

// Module 是 server 的 Fx 模块
var Module = fx.Module("server",
	fx.Provide(NewFromParams),
)

// NewFromParams 创建服务并挂接生命周期
//
// 服务自行停止时通知 fx 应用退出：Kill 请求退出码为 0，
// 其他错误（如全部监听器失效）退出码为 1。
func NewFromParams(p Params) (*Server, error) {
	s, err := New(p.Config, WithReporter(p.Reporter))
	if err != nil {
		return nil, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := s.Start(ctx); err != nil {
				return err
			}
			go func() {
				<-s.Done()
				switch err := s.Err(); {
				case err == nil:
				case errors.Is(err, ErrKilled):
					_ = p.Shutdowner.Shutdown()
				default:
					logger.Error("服务异常停止", "err", err)
					_ = p.Shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: s.Stop,
	})
	return s, nil
}
