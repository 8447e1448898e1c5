package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/fatih/color"

	"github.com/deepvis/vqleval"
	"github.com/deepvis/vqleval/internal/dbfile"
)

// queryCommand runs one VQL statement against a database file.
type queryCommand struct {
	db        string
	statement string
	timeout   time.Duration
}

func (cmd *queryCommand) run(_ *kingpin.ParseContext) error {
	ctx, cancel := context.WithTimeout(context.Background(), cmd.timeout)
	defer cancel()

	res, err := vqleval.Query(ctx, cmd.db, cmd.statement, dbfile.DefaultOptions())
	if err != nil {
		exitWithErr(err)
	}

	bold := color.New(color.Bold)
	bold.Printf("%s chart\n", res.Chart)
	fmt.Println(res.SQL)
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(res.Columns, "\t"))
	for _, row := range res.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = formatCell(v)
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	if err := w.Flush(); err != nil {
		exitWithErr(err)
	}
	return nil
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return fmt.Sprintf("x'%x'", x)
	case time.Time:
		return x.Format(time.RFC3339)
	}
	return fmt.Sprint(v)
}

func addQueryCommand(app *kingpin.Application) {
	cmd := &queryCommand{}
	query := app.Command("query", "Compile a VQL statement and print the rows it selects.").Action(cmd.run)
	query.Flag("db", "The SQLite database file.").Required().ExistingFileVar(&cmd.db)
	query.Flag("timeout", "Maximum time to run the query.").Default("30s").DurationVar(&cmd.timeout)
	query.Arg("vql", "The VQL statement.").Required().StringVar(&cmd.statement)
}
