package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/basenana/graphdump/config"
	"github.com/basenana/graphdump/utils"
)

var (
	WorkSpace string
	force     bool
)

func init() {
	initCmd.Flags().StringVar(&WorkSpace, "workspace", config.LocalUserPath(), "graphdump workspace")
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "generate local configuration",
	Run: func(cmd *cobra.Command, args []string) {
		initDefaultConfig()
	},
}

func initDefaultConfig() {
	fmt.Printf("Workspace: %s\n", WorkSpace)
	if err := utils.Mkdir(WorkSpace); err != nil {
		fmt.Printf("init workspace failed: %s\n", err.Error())
		return
	}

	configPath := localConfigFilePath(WorkSpace)
	fmt.Printf("Workspace Config: %s\n", configPath)
	if _, err := os.Stat(configPath); err == nil && !force {
		fmt.Println("Config file already exists, use --force to overwrite it")
		return
	}

	conf := config.DefaultPersistentConfig(WorkSpace)
	fmt.Printf("Workspace Export Dir: %s\n", conf.Output.Storage.LocalDir)
	fmt.Printf("Workspace Ledger File: %s\n", conf.Ledger.Path)

	raw, _ := json.MarshalIndent(conf, "", "    ")
	if err := utils.WriteFileAtomic(configPath, bytes.NewReader(raw)); err != nil {
		fmt.Printf("wirteback config file failed: %s\n", err.Error())
		return
	}
	fmt.Println("Generate local configuration succeed")
}
