package main

import "github.com/frahmantamala/workforce-attendance/cmd"

func main() {
	cmd.Execute()
}
