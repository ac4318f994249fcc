package main

import (
	"os"

	"github.com/antonvs2/adbkit/pkg"
)

func main() {
	if err := pkg.Run(); err != nil {
		os.Exit(1)
	}
}
