// xmutexctl 是 xmutex 的命令行工具，用于查看生效配置和压测锁竞争。
//
// 用法:
//
//	xmutexctl [全局选项] <命令> [命令参数]
//
// 全局选项:
//
//	-c, --config     互斥锁配置文件（.yaml/.yml/.json）
//	    --section    配置文件中的段，默认根
//	    --log-level  日志级别 debug/info/warn/error（默认 warn）
//	    --log-file   日志文件路径，按大小轮转；不设置时写 stderr
//
// 命令:
//
//	run      按工作负载描述并发执行 Lock 并统计结果
//	config   打印生效配置
//
// 退出码:
//
//	0: 成功
//	1: 执行失败（run 命令: 出现锁重叠）
//	2: 参数错误
//
// 示例:
//
//	xmutexctl config -c app.yaml --section mutex
//	xmutexctl run --workload bench.yaml
//	xmutexctl run --workers 8 --requests 50 --keys a,b --body 5ms
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
)

// 版本信息（可通过 -ldflags 注入）。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	os.Exit(run(os.Args))
}

func createApp() *cli.Command {
	return &cli.Command{
		Name:    "xmutexctl",
		Usage:   "xmutex 配置查看与竞争压测",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "互斥锁配置文件（.yaml/.yml/.json）",
			},
			&cli.StringFlag{
				Name:  "section",
				Usage: "配置文件中的段",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "日志级别 debug/info/warn/error",
				Value: "warn",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "日志文件路径（按大小轮转）",
			},
		},
		Commands: []*cli.Command{
			createRunCommand(),
			createConfigCommand(),
		},
		// 设计决策: 禁止 urfave/cli 直接调用 os.Exit，退出码统一由 run() 映射。
		ExitErrHandler: func(_ context.Context, _ *cli.Command, err error) {
			if _, ok := err.(cli.ExitCoder); ok {
				fmt.Fprintln(os.Stderr, err)
			}
		},
	}
}

func run(args []string) int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	setupSignalHandler(cancel)

	if err := createApp().Run(ctx, args); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			return exitErr.code
		}
		var usageErr *usageError
		if errors.As(err, &usageErr) {
			fmt.Fprintf(os.Stderr, "参数错误: %v\n", usageErr)
			return 2
		}
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		return 1
	}
	return 0
}

// setupSignalHandler 第一次 SIGINT/SIGTERM 取消 ctx，第二次强制退出。
func setupSignalHandler(cancel context.CancelFunc) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()

		<-sigCh
		signal.Stop(sigCh)
		os.Exit(130)
	}()
}

// usageError 参数错误，退出码 2。
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func usageErrorf(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// exitError 携带退出码，消息已由命令自行输出。
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }
