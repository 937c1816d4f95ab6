package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"linechange/internal/changeover"
	"linechange/internal/config"
	"linechange/internal/exporter"
	"linechange/internal/model"
	"linechange/internal/notify"
	"linechange/internal/store"
)

func newQCOCmd(opts *cliOptions) *cobra.Command {
	var (
		line       string
		save       bool
		exportPath string
	)

	cmd := &cobra.Command{
		Use:   "qco <current-ob.xlsx> <upcoming-ob.xlsx>",
		Short: "比较两个款式的 OB 表，生成换款记录",
		Long: `解析当前款与下一款的 OB 表，计算各机器类型的增减需求。

示例:
  linechange qco cur.xlsx next.xlsx --line S-10
  linechange qco cur.xlsx next.xlsx --line RAJKUMAR --save --export qco.xlsx`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			if line == "" {
				line = cfg.Changeover.DefaultLine
			}
			line = cfg.Registry().LineCode(line)

			cur, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer cur.Close()
			next, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer next.Close()

			builder := changeover.NewBuilder(changeover.NewOBParser(cfg.OBLayout(), cfg.OB.MatchThreshold), nil)
			data, err := builder.Build(background(cmd), line,
				changeover.Source{Name: filepath.Base(args[0]), Reader: cur},
				changeover.Source{Name: filepath.Base(args[1]), Reader: next})
			if err != nil {
				return err
			}

			var saved *model.SaveResult
			if save {
				res, err := saveChangeover(cmd, cfg, opts.log, data)
				if err != nil {
					return err
				}
				saved = &res
			}

			if exportPath != "" {
				f, err := exporter.NewExporter(nil).ExportQCO(data, nil)
				if err != nil {
					return err
				}
				defer f.Close()
				if err := f.SaveAs(exportPath); err != nil {
					return fmt.Errorf("保存导出文件失败: %w", err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "已导出: %s\n", exportPath)
			}

			return writeJSON(cmd.OutOrStdout(), struct {
				QCO   *model.QCOData    `json:"qco"`
				Saved *model.SaveResult `json:"saved,omitempty"`
			}{data, saved})
		},
	}

	cmd.Flags().StringVarP(&line, "line", "l", "", "产线编号或主管名称 (默认: [changeover] default_line)")
	cmd.Flags().BoolVar(&save, "save", false, "保存到数据目录的 SQLite 库")
	cmd.Flags().StringVarP(&exportPath, "export", "o", "", "导出为 xlsx")
	return cmd
}

// saveChangeover 保存换款记录；启用 Kafka 时同时推送事件
func saveChangeover(cmd *cobra.Command, cfg *config.AppConfig, log *zap.Logger, data *model.QCOData) (model.SaveResult, error) {
	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		return model.SaveResult{}, err
	}
	st, err := store.New(filepath.Join(dataDir, "linechange.db"))
	if err != nil {
		return model.SaveResult{}, err
	}
	defer st.Close()

	var saver changeover.Saver = st
	if cfg.Kafka.Enabled && len(cfg.Kafka.Brokers) > 0 {
		pub := notify.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, log.Named("notify"))
		defer pub.Close()
		saver = notify.NewSaver(st, pub, nil, log.Named("notify"))
	}
	return saver.Save(background(cmd), data.QCONumber, data)
}
