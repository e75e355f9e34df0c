package main

import "github.com/frahmantamala/lead-rotation/cmd"

func main() {
	cmd.Execute()
}
