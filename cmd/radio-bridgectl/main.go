package main

import "github.com/oshokin/radio-bridge/cmd/radio-bridgectl/cmd"

func main() {
	cmd.Execute()
}
