package main

import "github.com/krapi/cms/cmd"

func main() {
	cmd.Execute()
}
