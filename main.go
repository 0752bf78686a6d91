package main

import "github.com/adk-dev/adk/cmd"

func main() {
	cmd.Execute()
}
