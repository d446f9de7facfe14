package main

import "github.com/Civic-3-io/citizen-connect-ind/cmd/client/cmd"

func main() {
	cmd.Execute()
}
