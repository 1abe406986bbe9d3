package main

import (
	"github.com/mcoot/netplay-go/internal/cli"
)

func main() {
	cli.Execute()
}
