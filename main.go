package main

import "goplot/cmd"

func main() {
	cmd.Execute()
}
