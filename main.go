package main

import "github.com/Beastly713/steganoweb/cmd"

func main() {
	cmd.Execute()
}
