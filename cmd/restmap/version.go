package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// These are stamped by goreleaser through ldflags. A `go install` build
// leaves them empty and the values are recovered from the embedded build
// info instead.
var (
	version = ""
	commit  = ""
	date    = ""
)

// getVersion resolves the release version, falling back to the module
// version recorded in the binary and finally to "(devel)".
func getVersion() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "(devel)"
}

// getCommit resolves the VCS revision, shortened to 7 characters.
func getCommit() string {
	if commit != "" {
		return commit
	}
	if rev := vcsSetting("vcs.revision"); rev != "" {
		if len(rev) > 7 {
			return rev[:7]
		}
		return rev
	}
	return "unknown"
}

// getDate resolves the VCS commit timestamp of the build.
func getDate() string {
	if date != "" {
		return date
	}
	if t := vcsSetting("vcs.time"); t != "" {
		return t
	}
	return "unknown"
}

// vcsSetting reads one key from the binary's embedded build settings.
func vcsSetting(key string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == key {
			return s.Value
		}
	}
	return ""
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the version, commit hash, and build date of restmap.`,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "restmap version %s\n", getVersion())
			fmt.Fprintf(out, "  commit: %s\n", getCommit())
			fmt.Fprintf(out, "  built:  %s\n", getDate())
		},
	}
}
