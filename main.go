package main

import "github.com/Digital-Shane/jojo/internal/cmd"

func main() {
	cmd.Execute()
}
