package main

import (
	"learnwatch/cmd/learnwatch/commands"
	"learnwatch/lib/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
