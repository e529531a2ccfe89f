package main

import "github.com/devicelab-dev/adbflow/pkg/cli"

func main() {
	cli.Execute()
}
