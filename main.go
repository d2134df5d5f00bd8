// Package main runs the sample arbor tree through the command line.
package main

import (
	"arbor.dev/pkg/arbor/examples/sample"
	"arbor.dev/pkg/arbor/pkg/arbor"
)

func main() {
	arbor.RunMain(sample.Tree())
}
