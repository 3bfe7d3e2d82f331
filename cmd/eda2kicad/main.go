package main

import "github.com/OpenTraceLab/eda2kicad/cmd/eda2kicad/cmd"

func main() {
	cmd.Execute()
}
