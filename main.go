package main

import "worktracker.com/worktracker/cmd"

func main() {
	cmd.Execute()
}
