package botcmd

import (
	"fmt"
	"regexp"
)

const Version = "v0.1.0"

var GoModVersion = ""
var Commit = ""
var VersionWithCommit = Version

var goModVersionRegex = regexp.MustCompile(`v.+\d{14}-([0-9a-f]{12})`)

func init() {
	if GoModVersion != "" {
		match := goModVersionRegex.FindStringSubmatch(GoModVersion)
		if match != nil {
			Commit = match[1]
		}
	}
	if Commit != "" {
		VersionWithCommit = fmt.Sprintf("%s+dev.%s", Version, Commit[:8])
	}
}
