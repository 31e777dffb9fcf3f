package config

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/basenana/graphdump/config"
)

func init() {
	RunCmd.AddCommand(initCmd)
}

var RunCmd = &cobra.Command{
	Use:   "config",
	Short: "graphdump config management",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Config: %s\n\n", config.FilePath)

		cfg, err := config.NewConfigLoader().GetConfig()
		if err != nil {
			fmt.Printf("load config failed: %s\n", err.Error())
			fmt.Println("Generate local configuration with 'graphdump config init'")
			return
		}

		raw, err := json.MarshalIndent(redact(cfg), "", "    ")
		if err != nil {
			fmt.Printf("marshal config failed: %s\n", err.Error())
			return
		}
		fmt.Println(string(raw))
	},
}

const redacted = "******"

// redact hides storage secrets and the ledger dsn before printing.
func redact(cfg config.Config) config.Config {
	s := cfg.Output.Storage
	if s.S3 != nil {
		c := *s.S3
		c.SecretAccessKey = redacted
		s.S3 = &c
	}
	if s.MinIO != nil {
		c := *s.MinIO
		c.SecretAccessKey = redacted
		s.MinIO = &c
	}
	if s.OSS != nil {
		c := *s.OSS
		c.AccessKeySecret = redacted
		s.OSS = &c
	}
	if s.Webdav != nil {
		c := *s.Webdav
		c.Password = redacted
		s.Webdav = &c
	}
	cfg.Output.Storage = s
	if cfg.Ledger.DSN != "" {
		cfg.Ledger.DSN = redacted
	}
	if cfg.SentryDSN != "" {
		cfg.SentryDSN = redacted
	}
	return cfg
}
