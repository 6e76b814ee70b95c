package main

import (
	cmd "github.com/rohmanhakim/sitecrawler/internal/cli"
)

func main() {
	cmd.Execute()
}
