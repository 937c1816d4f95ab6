package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"linechange/internal/config"
)

// newConfigCmd 导出当前生效配置（含环境变量覆盖）
func newConfigCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config <output.toml>",
		Short: "写出当前生效的配置",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.SaveConfig(opts.cfg, args[0]); err != nil {
				return fmt.Errorf("写入配置失败: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), args[0])
			return nil
		},
	}
}
