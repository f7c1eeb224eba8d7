package main

import "github.com/pratham/chatterm/internal/commands"

func main() {
	commands.Execute()
}
