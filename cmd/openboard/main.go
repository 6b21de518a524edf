package main

import "github.com/openboard/openboard/cmd/openboard/cmd"

func main() {
	cmd.Execute()
}
