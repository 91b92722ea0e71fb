package main

import "github.com/replicactl/replicactl/cmd"

func main() {
	cmd.Execute()
}
