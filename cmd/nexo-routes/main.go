package main

import "github.com/abdul-hamid-achik/nexo-routes/cmd/nexo-routes/commands"

func main() {
	commands.Execute()
}
