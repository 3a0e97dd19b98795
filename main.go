package main

import "github.com/ridoystarlord/fksync/cmd"

func main() {
	cmd.Execute()
}
