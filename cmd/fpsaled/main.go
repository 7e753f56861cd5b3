package main

import "github.com/LeJamon/goFixedPriceSale/internal/cli"

func main() {
	cli.Execute()
}
