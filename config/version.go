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

package config

import (
	"fmt"
	"runtime/debug"
	"strconv"
	"strings"
)

// set by -ldflags "-X github.com/basenana/graphdump/config.gitTag=... -X ...gitCommit=..."
var (
	gitTag    string
	gitCommit string
)

type Version struct {
	Major   int    `json:"major"`
	Minor   int    `json:"minor"`
	Patch   int    `json:"patch"`
	Release string `json:"release"`
	Git     string `json:"git"`
}

func (v Version) Version() string {
	releaseInfo := ""
	if v.Release != "" {
		releaseInfo = "-" + v.Release
	}
	return fmt.Sprintf("v%d.%d.%d%s", v.Major, v.Minor, v.Patch, releaseInfo)
}

func (v Version) UserAgent() string {
	return "graphdump/" + v.Version()
}

func VersionInfo() Version {
	return parseVersion(gitTag, gitCommit)
}

func parseVersion(tag, commit string) Version {
	if tag == "" || commit == "" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if tag == "" && strings.HasPrefix(info.Main.Version, "v") {
				tag = info.Main.Version
			}
			for _, s := range info.Settings {
				if s.Key == "vcs.revision" && commit == "" {
					commit = s.Value
				}
			}
		}
	}

	versionInfo := Version{Git: commit}
	tag = strings.TrimPrefix(tag, "v")
	if tag == "" {
		return versionInfo
	}

	version, release, _ := strings.Cut(tag, "-")
	parts := strings.Split(version, ".")
	versionInfo.Major, _ = strconv.Atoi(parts[0])
	if len(parts) > 1 {
		versionInfo.Minor, _ = strconv.Atoi(parts[1])
	}
	if len(parts) > 2 {
		versionInfo.Patch, _ = strconv.Atoi(parts[2])
	}
	versionInfo.Release = release
	return versionInfo
}
