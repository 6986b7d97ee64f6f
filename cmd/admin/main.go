// Command admin runs one-off maintenance tasks against the platform database:
// migrations, instructor provisioning and password resets.
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand(os.Stdout).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
