package vqleval_test

import (
	"fmt"

	"github.com/deepvis/vqleval"
)

func ExampleParseSide() {
	side, err := vqleval.ParseSide("Visualize LINE SELECT sale_date, SUM(amount) FROM sales BIN sale_date BY month")
	if err != nil {
		panic(err)
	}
	fmt.Println(side.Chart)
	fmt.Println(side.SQL)
	fmt.Println(side.Bin)
	// Output:
	// LINE
	// SELECT strftime('%m', sale_date), SUM(amount) FROM sales GROUP BY strftime('%m', sale_date)
	// BIN sale_date BY month
}

func ExampleParseSide_error() {
	_, err := vqleval.ParseSide("Visualize BAR SELECT name FROM employee")
	fmt.Println(err != nil)
	// Output: true
}
