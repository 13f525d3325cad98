package main

import "advent-calendar/cmd"

func main() {
	cmd.Execute()
}
