package main

import "github.com/RMahshie/srtk/internal/cli"

func main() {
	cli.Execute()
}
