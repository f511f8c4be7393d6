// syncctl is an operator CLI for the household realtime sync hub.
package main

import "household/cmd/syncctl/commands"

func main() {
	commands.Execute()
}
