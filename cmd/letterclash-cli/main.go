package main

import "letterclash-backend/cmd/letterclash-cli/cmd"

func main() {
	cmd.Execute()
}
