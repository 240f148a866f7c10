package main

import "github.com/kailas-cloud/burner/internal/cli"

func main() {
	cli.Execute()
}
