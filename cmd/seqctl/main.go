// Command seqctl inspects and repairs the document sequencing state.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(openFromConfig).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
