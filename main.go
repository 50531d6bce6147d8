// Package main provides the entry point for rv32sim.
// rv32sim is a cycle-accurate RV32 pipeline simulator.
//
// For the full CLI, use: go run ./cmd/rv32sim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("rv32sim - RV32 pipeline simulator")
	fmt.Println("")
	fmt.Println("Usage: rv32sim [options] <program.hex>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -cache      Data cache kind (none, direct-mapped, fully-associative, set-associative)")
	fmt.Println("  -predictor  Branch predictor kind")
	fmt.Println("  -config     Path to simulation configuration JSON file")
	fmt.Println("  -debug      Print per-cycle pipeline state")
	fmt.Println("  -log        Write the per-cycle pipeline log to a file")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/rv32sim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/rv32sim' instead.")
	}
}
