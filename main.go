// Package main is the entry point for the recipe embedding feeder.
// The feeder reconciles the recipe key-value store against the vector
// embedding index and enqueues recipes that are missing an embedding
// onto the embedding work queue, one time-boxed invocation at a time.
package main

import "recipefeeder/cmd"

func main() {
	cmd.Execute()
}
