package main

import (
	"fmt"
	"os"

	"github.com/rios0rios0/smartupdate/cmd/smartupdate"
)

func main() {
	if err := smartupdate.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
