package main

import (
	// embedded zoneinfo so timezone resolution works on hosts without tzdata
	_ "time/tzdata"

	"github.com/teemow/ewsfreebusy/cmd"
)

// version will be set by goreleaser during build
var version = "dev"

func main() {
	// Set the version from build-time variable
	cmd.SetVersion(version)

	// Execute the root command
	cmd.Execute()
}
