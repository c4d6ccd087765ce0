package main

import "github.com/inovacc/ghsync/cmd"

func main() {
	cmd.Execute()
}
