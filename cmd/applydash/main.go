package main

import "github.com/nfrund/applydash/cmd/applydash/cmd"

func main() {
	cmd.Execute()
}
