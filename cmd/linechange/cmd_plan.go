package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"linechange/internal/exporter"
	"linechange/internal/importer"
	"linechange/internal/planning"
)

func newPlanCmd(opts *cliOptions) *cobra.Command {
	var (
		query      string
		groupBy    string
		summary    bool
		exportPath string
	)

	cmd := &cobra.Command{
		Use:   "plan <file.xlsx>",
		Short: "解析排产表并输出款式排产 (JSON)",
		Long: `解析排产表，按产线与开始日期输出款式排产。

示例:
  linechange plan week42.xlsx --query polo --group-by supervisor
  linechange plan week42.xlsx --summary
  linechange plan week42.xlsx --export plan.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			layout, err := opts.cfg.PlanLayout()
			if err != nil {
				return err
			}
			planner := planning.NewPlanner(layout, opts.cfg.Registry())
			coordinator := importer.NewCoordinator(nil, planner, nil, opts.log.Named("importer"))

			res, err := coordinator.Run(background(cmd), importer.ImportOptions{FilePath: args[0]})
			if err != nil {
				return err
			}
			styles := planning.Filter(res.Styles, query)

			if exportPath != "" {
				f, err := exporter.NewExporter(nil).ExportPlan(styles)
				if err != nil {
					return err
				}
				defer f.Close()
				if err := f.SaveAs(exportPath); err != nil {
					return fmt.Errorf("保存导出文件失败: %w", err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "已导出 %d 个款式: %s\n", len(styles), exportPath)
				return nil
			}

			out := cmd.OutOrStdout()
			switch {
			case summary:
				return writeJSON(out, planning.Summarize(styles))
			case groupBy != "":
				key, err := planning.ParseGroupKey(groupBy)
				if err != nil {
					return err
				}
				return writeJSON(out, planning.GroupBy(styles, key))
			default:
				return writeJSON(out, styles)
			}
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "按款式/产线/主管/在产款式检索")
	cmd.Flags().StringVarP(&groupBy, "group-by", "g", "", "分组维度: line | supervisor")
	cmd.Flags().BoolVar(&summary, "summary", false, "输出看板汇总")
	cmd.Flags().StringVarP(&exportPath, "export", "o", "", "导出为 xlsx")
	cmd.MarkFlagsMutuallyExclusive("summary", "group-by")
	return cmd
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// background cobra 未注入 Context 时的兜底
func background(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
