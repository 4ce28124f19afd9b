package main

import "mod-builder/cmd"

func main() {
	cmd.Execute()
}
