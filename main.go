package main

import "github.com/rhaphazard/browserid/cmd"

func main() {
	cmd.Execute()
}
