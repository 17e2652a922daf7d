package main

import cmd "github.com/toozej/go-ehparse/cmd/go-ehparse"

func main() {
	cmd.Execute()
}
