package main

import (
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/deepvis/vqleval"
)

// compileCommand prints the SQL a VQL statement lowers to.
type compileCommand struct {
	statement string
	verbose   bool
}

func (cmd *compileCommand) run(_ *kingpin.ParseContext) error {
	side, err := vqleval.ParseSide(cmd.statement)
	if err != nil {
		exitWithErr(err)
	}
	if cmd.verbose {
		fmt.Printf("chart: %s\n", side.Chart)
		if side.Bin != "" {
			fmt.Printf("bin:   %s\n", side.Bin)
		}
	}
	fmt.Println(side.SQL)
	return nil
}

func addCompileCommand(app *kingpin.Application) {
	cmd := &compileCommand{}
	compile := app.Command("compile", "Print the SQL a VQL statement compiles to.").Action(cmd.run)
	compile.Flag("verbose", "Also print the chart type and BIN clause.").Short('v').BoolVar(&cmd.verbose)
	compile.Arg("vql", "The VQL statement.").Required().StringVar(&cmd.statement)
}
