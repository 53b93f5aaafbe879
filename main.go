package main

import "github.com/ValentinKolb/mongomaint/cmd"

func main() {
	cmd.Execute()
}
