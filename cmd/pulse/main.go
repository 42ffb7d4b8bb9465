package main

import (
	"os"

	"pulse.news/pulse/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
