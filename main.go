package main

import (
	"github.com/ru551n/tsfpga/cmd"
)

func main() {
	cmd.Execute()
}
