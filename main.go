package main

import "github.com/Eursukkul/gym-reservation/cmd"

func main() {
	cmd.Execute()
}
