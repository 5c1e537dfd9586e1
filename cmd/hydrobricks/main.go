// Command hydrobricks is a command-line interface for the hydrobricks
// semi-distributed conceptual hydrological model.
package main

import (
	"fmt"
	"os"

	"github.com/hydrobricks/hydrobricks/internal/cliutil"
)

func main() {
	cfg := cliutil.NewConfig()
	if err := cfg.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
