package main

import "github.com/frahmantamala/insight-pulse/cmd"

func main() {
	cmd.Execute()
}
