package main

import "github.com/dtvem/noderuntime/src/cmd"

func main() {
	cmd.Execute()
}
