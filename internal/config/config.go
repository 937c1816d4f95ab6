package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"linechange/internal/lines"
	"linechange/internal/parser"
	"linechange/internal/sequence"
)

// AppConfig 应用配置
type AppConfig struct {
	Server     ServerConfig     `toml:"server"`
	Data       DataConfig       `toml:"data"`
	Plan       PlanConfig       `toml:"plan"`
	OB         OBConfig         `toml:"ob"`
	Kafka      KafkaConfig      `toml:"kafka"`
	Changeover ChangeoverConfig `toml:"changeover"`
	Lines      []lines.Line     `toml:"lines"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
}

// DataConfig 数据配置
type DataConfig struct {
	DataDir string `toml:"data_dir"`
}

// PlanConfig 排产表布局（0 起始行列号）
type PlanConfig struct {
	DateRow            int    `toml:"date_row"`
	DayRow             int    `toml:"day_row"`
	StyleStartRow      int    `toml:"style_start_row"`
	StyleEndRow        int    `toml:"style_end_row"`
	RowStride          int    `toml:"row_stride"`
	LineColumn         int    `toml:"line_col"`
	CurrentStyleColumn int    `toml:"current_style_col"`
	PlanStartColumn    int    `toml:"plan_start_col"`
	Location           string `toml:"location"` // IANA 时区名，空值为本地时区
}

// OBConfig OB 表布局与对齐参数
type OBConfig struct {
	SectionColumn       int      `toml:"section_col"`
	NameColumn          int      `toml:"name_col"`
	SMVColumn           int      `toml:"smv_col"`
	MachineColumn       int      `toml:"machine_col"`
	QtyColumn           int      `toml:"qty_col"`
	SeqNameColumn       int      `toml:"seq_name_col"`
	SeqRefColumn        int      `toml:"seq_ref_col"`
	HeaderScanRows      int      `toml:"header_scan_rows"`
	MatchThreshold      float64  `toml:"match_threshold"`
	TerminationKeywords []string `toml:"termination_keywords"`
}

// KafkaConfig 换款事件推送
type KafkaConfig struct {
	Enabled bool     `toml:"enabled"`
	Brokers []string `toml:"brokers"`
	Topic   string   `toml:"topic"`
}

// ChangeoverConfig 换款默认值
type ChangeoverConfig struct {
	DefaultLine string `toml:"default_line"`
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	Path          string
	FileFound     bool
	PortSpecified bool
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	pl := parser.DefaultPlanLayout()
	ob := parser.DefaultOBLayout()
	return &AppConfig{
		Server: ServerConfig{
			Port:    20261,
			DevMode: false,
		},
		Data: DataConfig{
			DataDir: "data",
		},
		Plan: PlanConfig{
			DateRow:            pl.DateRow,
			DayRow:             pl.DayRow,
			StyleStartRow:      pl.StyleStartRow,
			StyleEndRow:        pl.StyleEndRow,
			RowStride:          pl.RowStride,
			LineColumn:         pl.LineColumn,
			CurrentStyleColumn: pl.CurrentStyleColumn,
			PlanStartColumn:    pl.PlanStartColumn,
		},
		OB: OBConfig{
			SectionColumn:       ob.SectionColumn,
			NameColumn:          ob.NameColumn,
			SMVColumn:           ob.SMVColumn,
			MachineColumn:       ob.MachineColumn,
			QtyColumn:           ob.QtyColumn,
			SeqNameColumn:       ob.SeqNameColumn,
			SeqRefColumn:        ob.SeqRefColumn,
			HeaderScanRows:      ob.HeaderScanRows,
			MatchThreshold:      sequence.DefaultThreshold,
			TerminationKeywords: ob.TerminationKeywords,
		},
		Kafka: KafkaConfig{
			Enabled: false,
			Brokers: []string{"localhost:9092"},
			Topic:   "linechange.changeovers",
		},
		Changeover: ChangeoverConfig{
			DefaultLine: "S-10",
		},
	}
}

// PlanLayout 转换为排产表扫描布局
func (c *AppConfig) PlanLayout() (parser.PlanLayout, error) {
	loc := time.Local
	if c.Plan.Location != "" {
		l, err := time.LoadLocation(c.Plan.Location)
		if err != nil {
			return parser.PlanLayout{}, fmt.Errorf("invalid plan location %q: %w", c.Plan.Location, err)
		}
		loc = l
	}
	return parser.PlanLayout{
		DateRow:            c.Plan.DateRow,
		DayRow:             c.Plan.DayRow,
		StyleStartRow:      c.Plan.StyleStartRow,
		StyleEndRow:        c.Plan.StyleEndRow,
		RowStride:          c.Plan.RowStride,
		LineColumn:         c.Plan.LineColumn,
		CurrentStyleColumn: c.Plan.CurrentStyleColumn,
		PlanStartColumn:    c.Plan.PlanStartColumn,
		Location:           loc,
	}, nil
}

// OBLayout 转换为 OB 解析布局
func (c *AppConfig) OBLayout() parser.OBLayout {
	return parser.OBLayout{
		SectionColumn:       c.OB.SectionColumn,
		NameColumn:          c.OB.NameColumn,
		SMVColumn:           c.OB.SMVColumn,
		MachineColumn:       c.OB.MachineColumn,
		QtyColumn:           c.OB.QtyColumn,
		SeqNameColumn:       c.OB.SeqNameColumn,
		SeqRefColumn:        c.OB.SeqRefColumn,
		HeaderScanRows:      c.OB.HeaderScanRows,
		TerminationKeywords: c.OB.TerminationKeywords,
	}
}

// Registry 产线注册表；未配置 [[lines]] 时使用默认产线表
func (c *AppConfig) Registry() *lines.Registry {
	return lines.NewRegistry(c.Lines)
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverAny, ok := raw["server"]
	if !ok {
		return false
	}

	serverMap, ok := serverAny.(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
	return ok
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// LoadConfigWithInfo 从可执行文件同目录的 config.toml 加载配置并返回元信息
func LoadConfigWithInfo() (*AppConfig, LoadConfigInfo, error) {
	exeDir, err := GetExeDir()
	if err != nil {
		// 无法获取可执行文件目录，使用当前目录
		exeDir = "."
	}
	return LoadFile(filepath.Join(exeDir, "config.toml"))
}

// LoadFile 从指定路径加载配置；文件不存在时使用默认配置
func LoadFile(configPath string) (*AppConfig, LoadConfigInfo, error) {
	info := LoadConfigInfo{Path: configPath}
	config := DefaultConfig()

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		info.FileFound = true
		info.PortSpecified = isPortSpecifiedInToml(data)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, info, fmt.Errorf("parse %s: %w", configPath, err)
		}
	case os.IsNotExist(err):
		// 配置文件不存在，使用默认配置
	default:
		return nil, info, err
	}

	applyEnv(config)
	return config, info, nil
}

// applyEnv 环境变量覆盖（用于容器 / 本地运行）
func applyEnv(config *AppConfig) {
	if v := os.Getenv("LINECHANGE_DATA_DIR"); v != "" {
		config.Data.DataDir = v
	}
	if v := os.Getenv("LINECHANGE_KAFKA_BROKERS"); v != "" {
		var brokers []string
		for _, b := range strings.Split(v, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
		if len(brokers) > 0 {
			config.Kafka.Brokers = brokers
			config.Kafka.Enabled = true
		}
	}
}

// SaveConfig 保存配置到指定路径
func SaveConfig(config *AppConfig, configPath string) error {
	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(configPath, data, 0644)
}

// EnsureDataDir 确保数据目录存在
// 相对路径基于可执行文件所在目录
func EnsureDataDir(config *AppConfig) (string, error) {
	dataDir := config.Data.DataDir
	if !filepath.IsAbs(dataDir) {
		exeDir, err := GetExeDir()
		if err != nil {
			exeDir = "."
		}
		dataDir = filepath.Join(exeDir, dataDir)
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}

	// 上传的排产表暂存目录
	if err := os.MkdirAll(filepath.Join(dataDir, "uploads"), 0755); err != nil {
		return "", err
	}

	return dataDir, nil
}
