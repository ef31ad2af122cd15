package main

import (
	"flow_navigator/presentation/terminal"
)

func main() {
	terminal.Execute()
}
