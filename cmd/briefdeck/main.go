package main

import "briefdeck/cmd/handlers"

func main() {
	handlers.Execute()
}
