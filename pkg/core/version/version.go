// ============================================================================
// termcore - Mode-aware command interpreter
// ============================================================================
//
// Package:     version
// Description: Build version information, settable via -ldflags
// Author:      Mike Stoffels
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Build metadata, overridden at link time:
//
//	go build -ldflags "-X github.com/msto63/termcore/pkg/core/version.Version=1.2.0"
var (
	Version   = "0.1.0"
	Commit    = ""
	BuildDate = ""
)

// Name is the product name reported by every surface
const Name = "termcore"

// Info describes the running build
type Info struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Get returns the build information, falling back to the VCS revision
// embedded by the Go toolchain when no commit was linked in
func Get() Info {
	info := Info{
		Name:      Name,
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	if info.Commit == "" {
		if bi, ok := debug.ReadBuildInfo(); ok {
			for _, s := range bi.Settings {
				if s.Key == "vcs.revision" && len(s.Value) >= 7 {
					info.Commit = s.Value[:7]
				}
			}
		}
	}
	return info
}

// String returns a one-line version banner
func (i Info) String() string {
	s := fmt.Sprintf("%s %s", i.Name, i.Version)
	if i.Commit != "" {
		s += " (" + i.Commit + ")"
	}
	return s + " " + i.GoVersion + " " + i.Platform
}
