package main

import "ministry-site/cmd"

func main() {
	cmd.Execute()
}
