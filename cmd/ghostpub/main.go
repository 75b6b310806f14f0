package main

import (
	"fmt"
	"os"

	"github.com/aretw0/ghostpub/pkg/core"
)

func main() {
	Execute()
}

func fatal(msg string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}

// fail prints the one-line notice for a classified error and exits.
func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error (%s): %s\n", core.KindOf(err), core.Summary(err))
	os.Exit(1)
}
