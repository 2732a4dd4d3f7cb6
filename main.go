package main

import "github.com/ticketsmith/ticketsmith/cmd"

func main() {
	cmd.Execute()
}
