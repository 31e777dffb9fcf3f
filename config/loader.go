package config

import (
	"encoding/json"
	"fmt"
	"os"
)

var FilePath string

type Loader interface {
	GetConfig() (Config, error)
}

type localLoader struct {
	workdir string
}

// GetConfig overlays the config file, when there is one, on top of the defaults.
func (l localLoader) GetConfig() (Config, error) {
	result := DefaultConfig(l.workdir)

	if FilePath != "" {
		_, err := os.Stat(FilePath)
		switch {
		case err == nil:
			if err = decodeConfigFile(FilePath, &result); err != nil {
				return result, err
			}
		case os.IsNotExist(err):
		default:
			return result, fmt.Errorf("open config file failed: %s", err.Error())
		}
	}

	if err := Verify(&result); err != nil {
		return result, fmt.Errorf("verify config failed: %w", err)
	}
	return result, nil
}

func decodeConfigFile(filePath string, result *Config) error {
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open config file failed: %s", err.Error())
	}
	defer f.Close()

	jd := json.NewDecoder(f)
	if err = jd.Decode(result); err != nil {
		return fmt.Errorf("parse config failed: %s", err.Error())
	}
	return nil
}

func NewConfigLoader() Loader {
	return localLoader{workdir: LocalUserPath()}
}

func NewConfigLoaderWithWorkdir(workdir string) Loader {
	return localLoader{workdir: workdir}
}
