package main

import "asfalto/cmd/asfalto/commands"

func main() {
	commands.Execute()
}
