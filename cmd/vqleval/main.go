// Command vqleval scores generated VQL statements against references by
// executing both on the bound SQLite database.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"
)

// exitInterrupted is the status used when the operator aborts a batch.
const exitInterrupted = 130

func main() {
	app := kingpin.New("vqleval", "Evaluate generated VQL against reference statements.")
	app.HelpFlag.Short('h')

	addEvalCommand(app)
	addCompileCommand(app)
	addQueryCommand(app)

	kingpin.MustParse(app.Parse(os.Args[1:]))
}

func exitWithErr(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
