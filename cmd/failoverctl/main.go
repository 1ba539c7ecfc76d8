package main

import "github.com/wolfguard/failoverd/cmd/failoverctl/commands"

func main() {
	commands.Execute()
}
