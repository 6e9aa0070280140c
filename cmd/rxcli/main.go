package main

import "rxledger/internal/cli"

func main() {
	cli.Execute()
}
