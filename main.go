package main

import "github.com/alexiusacademia/bridgepsci/cmd"

func main() {
	cmd.Execute()
}
