package main

import "github.com/OpenTraceLab/OpenTraceNet/cmd/otn/cmd"

func main() {
	cmd.Execute()
}
