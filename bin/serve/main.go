// Command serve starts the gallery web server. It is the container entry
// point and accepts the same flags as "forum-geni serve".
package main

import (
	"fmt"
	"os"

	"forum-geni/cmd"
)

func main() {
	rootCmd := cmd.NewRootCmd()
	rootCmd.SetArgs(append([]string{"serve"}, os.Args[1:]...))
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
