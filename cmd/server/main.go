// chronodoc server binary.
// Build with: go build -o bin/chronodoc ./cmd/server
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
