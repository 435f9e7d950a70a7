package main

import (
	"fmt"
	"os"

	"fjacquet/spending-coach/cmd/analyze"
	"fjacquet/spending-coach/cmd/categorize"
	"fjacquet/spending-coach/cmd/chat"
	"fjacquet/spending-coach/cmd/root"
	"fjacquet/spending-coach/cmd/serve"
	"fjacquet/spending-coach/internal/ui"
)

func init() {
	root.Init()

	root.Cmd.AddCommand(analyze.Cmd)
	root.Cmd.AddCommand(chat.Cmd)
	root.Cmd.AddCommand(categorize.Cmd)
	root.Cmd.AddCommand(serve.Cmd)
}

func main() {
	root.Cmd.SilenceErrors = true
	if err := root.Cmd.Execute(); err != nil {
		fmt.Fprint(os.Stderr, ui.RenderError(err))
		os.Exit(1)
	}
}
