package main

import "github.com/notargets/fnknot/cmd"

func main() {
	cmd.Execute()
}
