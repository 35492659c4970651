package main

import "github.com/philipparndt/gobox/cmd"

func main() {
	cmd.Execute()
}
