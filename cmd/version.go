package cmd

// Version is set at build time with ldflags:
//
//	go build -ldflags "-X github.com/dragmate/dragmate/cmd.Version=1.0.0"
var Version = "0.1.0-dev"
