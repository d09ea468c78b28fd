// In file: cmd/assistant/version.go
package main

import (
	"fmt"
	"runtime"

	cacheversion "github.com/dileep-u-k/course-assistant/internal/version"

	"github.com/spf13/cobra"
)

// Set at build time with -ldflags "-X main.version=...".
var (
	version   = "dev"
	buildDate = "unknown"
	gitCommit = "unknown"
)

type BuildInfo struct {
	Version, BuildDate, GitCommit, GoVersion, Platform string
}

func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   version,
		BuildDate: buildDate,
		GitCommit: gitCommit,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build and component versions",
	Run: func(cmd *cobra.Command, _ []string) {
		info := GetBuildInfo()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "course-assistant %s (commit %s, built %s)\n", info.Version, info.GitCommit, info.BuildDate)
		fmt.Fprintf(out, "%s %s\n", info.GoVersion, info.Platform)
		fmt.Fprintf(out, "components: tools %s, course data %s, prompt %s\n",
			cacheversion.ComponentVersions.Tools,
			cacheversion.ComponentVersions.CourseData,
			cacheversion.ComponentVersions.PromptLogic)
	},
}
