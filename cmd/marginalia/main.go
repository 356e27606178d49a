// Command marginalia keeps annotations attached to text as it is edited.
package main

import (
	"os"

	"github.com/dshills/marginalia/internal/commands"
)

func main() {
	if err := commands.New().Execute(); err != nil {
		os.Exit(1)
	}
}
