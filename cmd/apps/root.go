/*
 Copyright 2023 NanaFS Authors.

 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package apps

import (
	"fmt"
	"path"

	"github.com/spf13/cobra"

	configapp "github.com/basenana/graphdump/cmd/apps/config"
	"github.com/basenana/graphdump/config"
)

var (
	tokenFile string
	debug     bool
)

func init() {
	RootCmd.AddCommand(todoCmd)
	RootCmd.AddCommand(onenoteCmd)
	RootCmd.AddCommand(versionCmd)
	RootCmd.AddCommand(configapp.RunCmd)

	RootCmd.PersistentFlags().StringVar(&config.FilePath, "config", path.Join(config.LocalUserPath(), config.DefaultConfigBase), "graphdump config file")
	todoCmd.Flags().StringVar(&tokenFile, "token-file", "", "read the OAuth2 token from file instead of stdin")
	onenoteCmd.Flags().StringVar(&tokenFile, "token-file", "", "read the OAuth2 token from file instead of stdin")
	RootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

var RootCmd = &cobra.Command{
	Use:   "graphdump",
	Short: "Microsoft To Do and OneNote exporter",
	Long:  `Export Microsoft To Do lists and OneNote notebooks into JSON snapshots through Microsoft Graph.`,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var todoCmd = &cobra.Command{
	Use:          "todo",
	Short:        "Export every To Do list with its tasks",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(cmd, exportTodo)
	},
}

var onenoteCmd = &cobra.Command{
	Use:          "onenote",
	Short:        "Export OneNote notebooks, sections and pages",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(cmd, exportOneNote)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "View version information",
	Run: func(cmd *cobra.Command, args []string) {
		vInfo := config.VersionInfo()
		fmt.Printf("Version: %s\n", vInfo.Version())
		fmt.Printf("GitCommit: %s\n", vInfo.Git)
	},
}
