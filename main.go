package main

import "github.com/vibast-solutions/ms-go-bounces/cmd"

func main() {
	cmd.Execute()
}
