// Package main 提供 epmd 命令行入口
//
// 无命令参数时运行守护进程；带 -names、-dump、-kill、-stop、-port2 时
// 作为客户端连接本机守护进程执行一次命令并打印结果。
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dep2p/go-epmd"
	"github.com/dep2p/go-epmd/config"
	"github.com/dep2p/go-epmd/internal/util/logger"
	"github.com/dep2p/go-epmd/pkg/lib/log"
)

var cliLogger = log.Logger("epmd/cmd")

// ═══════════════════════════════════════════════════════════════════════════
// 命令行参数
// ═══════════════════════════════════════════════════════════════════════════

// cliFlags 解析后的命令行参数
type cliFlags struct {
	fs  *flag.FlagSet
	set map[string]bool

	// 守护进程参数
	address       string
	port          int
	ipv6          bool
	packetTimeout int
	relaxed       bool
	debug         bool
	daemon        bool
	delayAccept   int
	delayWrite    int
	configFile    string
	metricsAddr   string

	// 客户端命令
	names bool
	dump  bool
	kill  bool
	stop  string
	port2 string

	// 信息显示
	version bool
}

// parseFlags 解析命令行参数
func parseFlags(args []string, stderr io.Writer) (*cliFlags, error) {
	f := &cliFlags{set: make(map[string]bool)}
	fs := flag.NewFlagSet("epmd", flag.ContinueOnError)
	fs.SetOutput(stderr)
	f.fs = fs

	// ─────────────────────────────────────────────────────────────────────
	// 守护进程参数
	// ─────────────────────────────────────────────────────────────────────
	fs.StringVar(&f.address, "address", "", "监听地址列表（逗号或空格分隔，回环地址总会加入）")
	fs.IntVar(&f.port, "port", int(config.DefaultPort), "监听端口；客户端命令连接的端口")
	fs.BoolVar(&f.ipv6, "ipv6", false, "同时监听 IPv6")
	fs.IntVar(&f.packetTimeout, "packet_timeout", int(config.DefaultPacketTimeout.Seconds()), "非注册连接空闲超时（秒）")
	fs.BoolVar(&f.relaxed, "relaxed_command_check", false, "允许远端 kill/stop，kill 无条件清空")
	fs.BoolVar(&f.debug, "d", false, "调试模式")
	fs.BoolVar(&f.debug, "debug", false, "调试模式")
	fs.BoolVar(&f.daemon, "daemon", false, "转入后台运行")
	fs.IntVar(&f.delayAccept, "delay_accept", 0, "接受连接前延迟（秒，调试用）")
	fs.IntVar(&f.delayWrite, "delay_write", 0, "写响应前延迟（秒，调试用）")
	fs.StringVar(&f.configFile, "config", "", "JSON 配置文件路径")
	fs.StringVar(&f.metricsAddr, "metrics", "", "Prometheus 指标地址，如 127.0.0.1:9369")

	// ─────────────────────────────────────────────────────────────────────
	// 客户端命令
	// ─────────────────────────────────────────────────────────────────────
	fs.BoolVar(&f.names, "names", false, "列出已注册节点")
	fs.BoolVar(&f.dump, "dump", false, "转储注册表（含存活状态）")
	fs.BoolVar(&f.kill, "kill", false, "清空注册表并停止守护进程")
	fs.StringVar(&f.stop, "stop", "", "注销指定名称的节点")
	fs.StringVar(&f.port2, "port2", "", "查询指定名称节点的端口")

	fs.BoolVar(&f.version, "version", false, "显示版本信息")
	fs.Usage = func() { printUsage(fs) }

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })
	return f, nil
}

// isSet 检查参数是否被显式设置
func (f *cliFlags) isSet(name string) bool {
	return f.set[name]
}

// hasCommand 是否为客户端命令模式
func (f *cliFlags) hasCommand() bool {
	return f.names || f.dump || f.kill || f.isSet("stop") || f.isSet("port2")
}

// ═══════════════════════════════════════════════════════════════════════════
// 入口
// ═══════════════════════════════════════════════════════════════════════════

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, os.Getenv))
}

// run 执行命令并返回退出码
func run(args []string, stdout, stderr io.Writer, getenv func(string) string) int {
	f, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "epmd: %v\n", err)
		return 1
	}

	if f.version {
		fmt.Fprintln(stdout, epmd.VersionInfo())
		return 0
	}

	cfg, err := loadConfig(f, getenv)
	if err != nil {
		fmt.Fprintf(stderr, "epmd: %v\n", err)
		return 1
	}
	if f.hasCommand() {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()
		return runCommand(ctx, f, cfg.Port, stdout, stderr)
	}

	if f.daemon && getenv(envDaemonized) == "" {
		if err := daemonize(args); err != nil {
			fmt.Fprintf(stderr, "epmd: %v\n", err)
			return 1
		}
		return 0
	}

	setupLogging(stderr, cfg)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	if err := serve(ctx, cfg); err != nil {
		fmt.Fprintf(stderr, "epmd: %v\n", err)
		return 1
	}
	return 0
}

// serve 运行守护进程直到收到信号或 Kill 请求
func serve(ctx context.Context, cfg *config.Config) error {
	d, err := epmd.New(epmd.WithConfig(cfg))
	if err != nil {
		return err
	}

	cliLogger.Info("启动 epmd", "version", epmd.Version, "commit", epmd.GitCommit, "port", cfg.Port)
	err = d.Run(ctx)
	if errors.Is(err, epmd.ErrKilled) {
		cliLogger.Info("收到 kill 请求，退出")
		return nil
	}
	return err
}

// setupLogging 按配置设置全局日志
func setupLogging(w io.Writer, cfg *config.Config) {
	lc := logger.ParseConfig(cfg.LogLevel, cfg.LogFormat)
	if cfg.Debug && lc.DefaultLevel > slog.LevelDebug {
		lc.DefaultLevel = slog.LevelDebug
	}
	logger.Setup(w, lc)
}

// printUsage 打印帮助
func printUsage(fs *flag.FlagSet) {
	w := fs.Output()
	fmt.Fprintln(w, "epmd - 节点名称注册与端口查询守护进程")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "用法:")
	fmt.Fprintln(w, "  epmd [选项]                    运行守护进程")
	fmt.Fprintln(w, "  epmd [-port N] -names|-dump|-kill|-stop NAME|-port2 NAME")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "选项:")
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "优先级: 默认值 < -config 文件 < 环境变量 < 命令行参数")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "环境变量:")
	fmt.Fprintln(w, "  ERL_EPMD_ADDRESS                监听地址列表")
	fmt.Fprintln(w, "  ERL_EPMD_PORT                   监听端口")
	fmt.Fprintln(w, "  ERL_EPMD_RELAXED_COMMAND_CHECK  宽松命令检查")
	fmt.Fprintln(w, "  ERL_EPMD_IPV6                   同时监听 IPv6")
	fmt.Fprintln(w, "  ERL_EPMD_PACKET_TIMEOUT         空闲超时（秒）")
	fmt.Fprintln(w, "  EPMD_LOG_LEVEL                  日志级别，如 core/server=debug,info")
	fmt.Fprintln(w, "  EPMD_LOG_FORMAT                 日志格式 text|json")
}
