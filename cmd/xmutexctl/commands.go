package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/xmutex/pkg/util/xmutex"
)

// setup 解析全局选项，创建日志记录器并加载文件配置。
func setup(cmd *cli.Command) ([]xmutex.Option, func() error, error) {
	root := cmd.Root()
	logger, closeLog, err := newLogger(root.String("log-level"), root.String("log-file"), root.ErrWriter)
	if err != nil {
		return nil, nil, err
	}

	var fileCfg xmutex.Config
	if path := root.String("config"); path != "" {
		if fileCfg, err = xmutex.LoadConfig(path, root.String("section")); err != nil {
			_ = closeLog()
			return nil, nil, err
		}
	}
	return []xmutex.Option{xmutex.WithLogger(logger), xmutex.WithConfig(fileCfg)}, closeLog, nil
}

func stdout(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

// =============================================================================
// config
// =============================================================================

func createConfigCommand() *cli.Command {
	return &cli.Command{
		Name:   "config",
		Usage:  "打印生效配置",
		Action: cmdConfig,
	}
}

func cmdConfig(_ context.Context, cmd *cli.Command) error {
	opts, closeLog, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	m, err := xmutex.New(opts...)
	if err != nil {
		return err
	}
	printConfig(stdout(cmd), m.Config())
	return nil
}

func printConfig(out io.Writer, cfg xmutex.Config) {
	fmt.Fprintf(out, "key:          %s\n", cfg.Key)
	fmt.Fprintf(out, "wait_timeout: %s\n", cfg.WaitTimeout)
	fmt.Fprintf(out, "hold_timeout: %s\n", cfg.HoldTimeout)
}

// =============================================================================
// run
// =============================================================================

func createRunCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "并发执行 Lock 并统计结果",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "workload", Aliases: []string{"w"}, Usage: "工作负载文件（.yaml/.yml/.json）"},
			&cli.IntFlag{Name: "workers", Usage: "并发调用方数量", Value: defaultWorkers},
			&cli.IntFlag{Name: "requests", Usage: "每个调用方的 Lock 次数", Value: defaultRequests},
			&cli.StringSliceFlag{Name: "keys", Usage: "轮流使用的 key（逗号分隔）"},
			&cli.DurationFlag{Name: "body", Usage: "临界区耗时", Value: defaultBody},
			&cli.IntFlag{Name: "retry", Usage: "等待超时的最大尝试次数（>1 时启用重试）"},
			&cli.DurationFlag{Name: "wait-timeout", Usage: "覆盖等待时限"},
			&cli.DurationFlag{Name: "hold-timeout", Usage: "覆盖持有时限"},
		},
		Action: cmdRun,
	}
}

func cmdRun(ctx context.Context, cmd *cli.Command) error {
	w, err := workloadFromFlags(cmd)
	if err != nil {
		return err
	}

	opts, closeLog, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	opts = append(opts, xmutex.WithConfig(w.Mutex))
	m, err := xmutex.New(opts...)
	if err != nil {
		return err
	}

	rep, err := runWorkload(ctx, m, w)
	printReport(stdout(cmd), rep)
	if err != nil {
		return err
	}
	if rep.Overlaps > 0 {
		return &exitError{code: 1}
	}
	return nil
}

// workloadFromFlags 以工作负载文件为基础，显式设置的命令行参数优先。
func workloadFromFlags(cmd *cli.Command) (workload, error) {
	w := defaultWorkload()
	if path := cmd.String("workload"); path != "" {
		var err error
		if w, err = loadWorkload(path); err != nil {
			return w, err
		}
	}

	if cmd.IsSet("workers") {
		w.Workers = cmd.Int("workers")
	}
	if cmd.IsSet("requests") {
		w.Requests = cmd.Int("requests")
	}
	if cmd.IsSet("keys") {
		w.Keys = cmd.StringSlice("keys")
	}
	if cmd.IsSet("body") {
		w.Body = cmd.Duration("body")
	}
	if cmd.IsSet("retry") {
		w.Retry = cmd.Int("retry")
	}
	if cmd.IsSet("wait-timeout") {
		w.Mutex.WaitTimeout = cmd.Duration("wait-timeout")
	}
	if cmd.IsSet("hold-timeout") {
		w.Mutex.HoldTimeout = cmd.Duration("hold-timeout")
	}
	return w, w.validate()
}
