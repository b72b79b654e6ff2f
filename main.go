package main

import "melody/cmd"

func main() {
	cmd.Execute()
}
