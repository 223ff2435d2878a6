package main

import "riscofdut/cmd/riscofdut/cli"

func main() {
	cli.Execute()
}
