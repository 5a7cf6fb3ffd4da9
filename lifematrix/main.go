// Command lifematrix runs the Game of Life LED matrix on the host.
package main

import "github.com/sarchlab/lifematrix/lifematrix/cmd"

func main() {
	cmd.Execute()
}
