// Copyright 2021 JD Fergason
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package common

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
	"sort"

	"github.com/olekukonko/tablewriter"
)

// set by mage through -ldflags
var (
	commitHash string
	buildDate  string
)

// Version is a SemVer 2.0.0 build version; Suffix is blank for releases
type Version struct {
	Major  int
	Minor  int
	Patch  int
	Suffix string
}

func (v Version) String() string {
	if v.Suffix == "" {
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	}

	version := fmt.Sprintf("%d.%d.%d-%s", v.Major, v.Minor, v.Patch, v.Suffix)
	if commitHash != "" {
		version += "+" + shortCommit(commitHash)
	}
	return version
}

// Module is a dependency compiled into the binary
type Module struct {
	Path    string
	Version string
}

// BuildInfo describes the running netfolio binary
type BuildInfo struct {
	Version   Version
	Commit    string
	Date      string
	GoVersion string
	Platform  string
	Modules   []Module
}

// CurrentBuild collects the build details of the running binary. When the
// binary was not built with mage the commit comes from the VCS stamp the go
// tool embeds.
func CurrentBuild() *BuildInfo {
	info := &BuildInfo{
		Version:   CurrentVersion,
		Commit:    commitHash,
		Date:      buildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}

	for _, setting := range bi.Settings {
		switch setting.Key {
		case "vcs.revision":
			if info.Commit == "" {
				info.Commit = setting.Value
			}
		case "vcs.time":
			if info.Date == "" {
				info.Date = setting.Value
			}
		}
	}

	info.Modules = make([]Module, 0, len(bi.Deps))
	for _, dep := range bi.Deps {
		mod := dep
		if dep.Replace != nil {
			mod = dep.Replace
		}
		info.Modules = append(info.Modules, Module{Path: dep.Path, Version: mod.Version})
	}
	sort.Slice(info.Modules, func(i, j int) bool {
		return info.Modules[i].Path < info.Modules[j].Path
	})

	return info
}

func (info *BuildInfo) String() string {
	commit := info.Commit
	if commit == "" {
		commit = "unknown"
	}
	date := info.Date
	if date == "" {
		date = "unknown"
	}

	return fmt.Sprintf("netfolio v%s %s\n\nBuild Date: %s\nCommit: %s\nBuilt with: %s",
		info.Version, info.Platform, date, commit, info.GoVersion)
}

// WriteModules renders the compiled-in dependencies as a table
func (info *BuildInfo) WriteModules(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Module", "Version"})
	table.SetAutoFormatHeaders(false)
	table.SetBorder(false)

	for _, mod := range info.Modules {
		table.Append([]string{mod.Path, mod.Version})
	}
	table.SetFooter([]string{"Total", fmt.Sprintf("%d", len(info.Modules))})

	table.Render()
}

func shortCommit(hash string) string {
	if len(hash) > 7 {
		return hash[:7]
	}
	return hash
}
