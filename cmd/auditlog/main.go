package main

import "github.com/loog-project/auditlog/cmd"

func main() {
	cmd.Execute()
}
