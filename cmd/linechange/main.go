package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"linechange/internal/config"
	"linechange/internal/logging"
)

// cliOptions 全局参数与加载后的运行环境
type cliOptions struct {
	configPath string
	verbose    bool
	dev        bool // serve --dev，需在日志初始化前生效

	cfg  *config.AppConfig
	info config.LoadConfigInfo
	log  *zap.Logger
}

// newRootCmd 构建命令树
func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:   "linechange",
		Short: "Linechange - 排产表解析与快速换款（QCO）工具",
		Long: `Linechange 解析工厂周排产表，重建各产线的款式排产，
并根据两个款式的 OB 表计算换款所需的机器差异。

不带子命令运行时等同于 serve。`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logging.Sync()
		},
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "配置文件路径 (默认: 可执行文件同目录 config.toml)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "输出 debug 日志")

	serve := newServeCmd(opts)
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())

	root.AddCommand(serve)
	root.AddCommand(newPlanCmd(opts))
	root.AddCommand(newQCOCmd(opts))
	root.AddCommand(newConfigCmd(opts))
	return root
}

// load 加载配置并初始化日志
func (o *cliOptions) load() error {
	var err error
	if o.configPath != "" {
		o.cfg, o.info, err = config.LoadFile(o.configPath)
	} else {
		o.cfg, o.info, err = config.LoadConfigWithInfo()
	}
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}

	if o.dev {
		o.cfg.Server.DevMode = true
	}
	o.log, err = logging.Init(o.verbose || o.cfg.Server.DevMode)
	if err != nil {
		return err
	}
	o.log.Debug("config loaded",
		zap.String("path", o.info.Path),
		zap.Bool("found", o.info.FileFound))
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
