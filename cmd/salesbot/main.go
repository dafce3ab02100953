// Command salesbot runs the salesbot HTTP backend and offers a prompt
// renderer for local bot configurations.
//
// @title       Salesbot API
// @version     1.0
// @description Sales bot generation, template chat, model proxy with per-user session limits, and business notifications.
// @BasePath    /
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
