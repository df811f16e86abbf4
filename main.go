package main

import "github.com/theirongolddev/dataneko/cmd"

func main() {
	cmd.Execute()
}
