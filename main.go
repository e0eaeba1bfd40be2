package main

import "github.com/pcmnking/liangfstar/cmd"

func main() {
	cmd.Execute()
}
