// Command yamdbctl административные операции вне HTTP API:
// назначение ролей и применение миграций.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
