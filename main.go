package main

import "github.com/frahmantamala/migration-tracker/cmd"

func main() {
	cmd.Execute()
}
