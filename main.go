package main

import "cohortschema/cmd"

func main() {
	cmd.Execute()
}
