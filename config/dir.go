package config

import (
	"os"
	"path"
)

const (
	DefaultConfigBase   = "graphdump.conf"
	defaultWorkDir      = ".graphdump"
	defaultSysLocalPath = "/var/lib/graphdump"
	defaultExportDir    = "export"
	defaultLedgerFile   = "ledger.db"
)

func LocalUserPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return defaultSysLocalPath
	}
	return path.Join(homeDir, defaultWorkDir)
}
