package main

import "github.com/secretshields/secretshields/cmd/secretshields"

func main() { secretshields.Execute() }
