package main

import "github.com/Mohsinsiddi/w3lessons/cmd"

func main() {
	cmd.Execute()
}
