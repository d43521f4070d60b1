package main

import (
	"fmt"
	"os"

	"github.com/xstream-util/xstream/cmd"
)

func main() {
	root := cmd.NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "xstream:", err)
		os.Exit(1)
	}
}
