package main

import "github.com/servo-mc/servo/cmd/servo/cmd"

func main() {
	cmd.Execute()
}
