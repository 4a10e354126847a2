// Command siminf runs a metapopulation stochastic simulation from a YAML
// model config and writes the resulting trajectory to CSV or SQLite.
package main

import "github.com/BorisVSchmid/SimInf/cmd/siminf/cmd"

func main() {
	cmd.Execute()
}
