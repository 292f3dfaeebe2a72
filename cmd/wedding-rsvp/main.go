package main

import "wedding-rsvp/internal/cli"

func main() {
	cli.Execute()
}
