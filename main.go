package main

import (
	"github.com/dragmate/dragmate/cmd"
)

func main() {
	cmd.Execute()
}
