package main

import "equipment-manager/cmd"

func main() {
	cmd.Execute()
}
