package main

import (
	"github.com/grocerysushi/stumbleupon-clone/cmd"
	_ "github.com/grocerysushi/stumbleupon-clone/cmd/cli"
	_ "github.com/grocerysushi/stumbleupon-clone/cmd/server"
)

func main() {
	cmd.Execute()
}
