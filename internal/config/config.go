package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// 表格存储类型
const (
	BackendNone     = ""
	BackendSQLite   = "sqlite"
	BackendWorkbook = "workbook"
)

// AppConfig 应用配置
type AppConfig struct {
	Server  ServerConfig  `toml:"server"`
	Data    DataConfig    `toml:"data"`
	Session SessionConfig `toml:"session"`
	Sheets  SheetsConfig  `toml:"sheets"`
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

// SessionConfig 会话配置
type SessionConfig struct {
	DefaultUser string `toml:"default_user"`
	Timezone    string `toml:"timezone"`
}

// SheetsConfig 表格存储配置
type SheetsConfig struct {
	Backend        string `toml:"backend"`
	FileRef        string `toml:"file_ref"`
	DBFile         string `toml:"db_file"`
	PassphraseEnv  string `toml:"passphrase_env"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	Path          string
	PortSpecified bool
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:    20262,
			DevMode: false,
		},
		Data: DataConfig{
			DataDir: "data",
		},
		Session: SessionConfig{
			DefaultUser: "GM",
			Timezone:    "Europe/Warsaw",
		},
		Sheets: SheetsConfig{
			DBFile:         "sheets.db",
			PassphraseEnv:  "JAMLO_SHEETS_PASSPHRASE",
			TimeoutSeconds: 10,
		},
	}
}

// Location 会话时区；无法加载时退回本地时区
func (c *AppConfig) Location() *time.Location {
	if c.Session.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Session.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// SheetTimeout 单次表格存储调用超时
func (c *AppConfig) SheetTimeout() time.Duration {
	if c.Sheets.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Sheets.TimeoutSeconds) * time.Second
}

// Passphrase 从配置指定的环境变量读取加密口令
func (c *AppConfig) Passphrase() string {
	if c.Sheets.PassphraseEnv == "" {
		return ""
	}
	return os.Getenv(c.Sheets.PassphraseEnv)
}

// Validate 检查配置
func (c *AppConfig) Validate() error {
	switch c.Sheets.Backend {
	case BackendNone, BackendSQLite:
	case BackendWorkbook:
		if c.Sheets.FileRef == "" {
			return fmt.Errorf("sheets.file_ref is required for the %s backend", BackendWorkbook)
		}
	default:
		return fmt.Errorf("unknown sheets backend %q", c.Sheets.Backend)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	return nil
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

// LoadFile 从指定文件加载配置；文件不存在时使用默认配置
func LoadFile(configPath string) (*AppConfig, LoadConfigInfo, error) {
	info := LoadConfigInfo{Path: configPath}
	config := DefaultConfig()

	data, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return nil, info, err
	}
	if err == nil {
		info.PortSpecified = isPortSpecifiedInToml(data)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, info, fmt.Errorf("failed to parse %s: %w", configPath, err)
		}
	}

	// 环境变量覆盖
	if v := os.Getenv("JAMLO_SHEETS_BACKEND"); v != "" {
		config.Sheets.Backend = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("JAMLO_SHEETS_FILE_REF"); v != "" {
		config.Sheets.FileRef = v
	}

	return config, info, nil
}

// LoadConfig 从 config.toml 加载配置
func LoadConfig() (*AppConfig, error) {
	config, _, err := LoadConfigWithInfo()
	return config, err
}

// ResolveDataDir 数据目录的绝对位置（相对路径基于可执行文件目录）
func ResolveDataDir(config *AppConfig) string {
	if filepath.IsAbs(config.Data.DataDir) {
		return config.Data.DataDir
	}
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	return filepath.Join(exeDir, config.Data.DataDir)
}

// EnsureDataDir 确保数据目录及其子目录存在
func EnsureDataDir(config *AppConfig) (string, error) {
	dataDir := ResolveDataDir(config)

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}

	// 创建子目录
	subdirs := []string{"uploads", "exports"}
	for _, subdir := range subdirs {
		path := filepath.Join(dataDir, subdir)
		if err := os.MkdirAll(path, 0755); err != nil {
			return "", err
		}
	}

	return dataDir, nil
}

// GetDataPath 获取数据文件路径
func GetDataPath(config *AppConfig, subdir, filename string) string {
	return filepath.Join(ResolveDataDir(config), subdir, filename)
}
