// Command invoke-demo drives the invoke-core pipeline through a handful of
// scripted scenarios against an in-process loopback Receiver.
package main

import "github.com/Sentinel-Gate/invoke-core/cmd/invoke-demo/cmd"

func main() {
	cmd.Execute()
}
