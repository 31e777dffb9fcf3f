package config

import (
	"path"

	"github.com/basenana/graphdump/config"
)

func localConfigFilePath(local string) string {
	return path.Join(local, config.DefaultConfigBase)
}
