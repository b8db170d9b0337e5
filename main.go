package main

import "github.com/curaious/devboard/cmd"

func main() {
	cmd.Execute()
}
