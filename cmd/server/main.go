package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Use stderr so stdio clients don't misinterpret output.
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
