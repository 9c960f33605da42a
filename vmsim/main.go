// Command vmsim replays memory access traces against a simulated physical
// memory and reports page faults and dirty-page writebacks.
package main

import "github.com/sarchlab/vmsim/vmsim/cmd"

func main() {
	cmd.Execute()
}
