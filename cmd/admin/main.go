// Command admin manages dashboard accounts and runs maintenance tasks.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd(&cli{out: os.Stdout}).Execute(); err != nil {
		os.Exit(1)
	}
}
