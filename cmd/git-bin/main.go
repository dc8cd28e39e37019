// Copyright © 2018 One Concern

package main

import (
	"github.com/oneconcern/gitbin/cmd/git-bin/cmd"
)

func main() {
	cmd.Execute()
}
