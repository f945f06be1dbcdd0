package main

import "github.com/prodaudit/prodaudit/cmd"

func main() {
	cmd.Execute()
}
