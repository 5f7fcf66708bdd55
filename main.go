package main

import "wscontest/cmd"

func main() {
	cmd.Execute()
}
