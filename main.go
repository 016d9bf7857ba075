package main

import "nefconv/cmd"

func main() {
	cmd.Execute()
}
