package main

import "github.com/hannesdelbeke/maya-security-tools/cmd/mayascan"

func main() { mayascan.Execute() }
