package main

import "github.com/acejesus/aceai/internal/commands"

func main() {
	commands.Execute()
}
