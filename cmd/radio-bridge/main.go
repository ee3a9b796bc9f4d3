package main

import "github.com/oshokin/radio-bridge/cmd/radio-bridge/cmd"

func main() {
	cmd.Execute()
}
