// blockctl manages block definitions: syncing snapshot files with storage,
// importing and exporting portable documents, and basic lifecycle actions.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
