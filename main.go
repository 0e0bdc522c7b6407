package main

import (
	"github.com/wdgames/gameshelf/cmd"
)

func main() {
	cmd.Execute()
}
