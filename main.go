package main

import "github.com/iksnae/devchat/cmd"

func main() {
	cmd.Execute()
}
