package main

import (
	"fmt"
	"os"
)

/* webhook-cli inspects and prunes persisted histories offline
 * Usage: webhook-cli list|show|delete --dir ./data/webhook-messages
 */

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
