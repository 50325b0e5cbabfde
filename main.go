package main

import "github.com/ngocvo/rollcall/cmd"

func main() {
	cmd.Execute()
}
