package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"ordersim/internal/generator"
)

func main() {
	var (
		count      int
		outputFile string
		seed       uint64
	)
	cmd := &cobra.Command{
		Use:           "genorders",
		Short:         "Write generated orders as JSON lines, without sending them",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(*cobra.Command, []string) error {
			return generateOrders(count, outputFile, seed)
		},
	}
	cmd.Flags().IntVar(&count, "count", 100, "number of orders to generate")
	cmd.Flags().StringVar(&outputFile, "output", "orders.jsonl", "output file, - for stdout")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed; 0 picks one")

	if err := cmd.Execute(); err != nil {
		log.Fatalf("generation failed: %v", err)
	}
}

func generateOrders(count int, outputFile string, seed uint64) error {
	if count < 0 {
		return fmt.Errorf("count must be >= 0, got %d", count)
	}

	var out io.Writer = os.Stdout
	if outputFile != "-" {
		file, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("create file: %w", err)
		}
		defer file.Close()
		out = file
	}

	if err := writeOrders(out, generator.New(seed), count); err != nil {
		return err
	}
	if outputFile != "-" {
		log.Printf("generated %d orders to %s", count, outputFile)
	}
	return nil
}

func writeOrders(w io.Writer, g *generator.Generator, count int) error {
	enc := json.NewEncoder(w)
	for i := 0; i < count; i++ {
		order := g.Order()
		if err := enc.Encode(&order); err != nil {
			return fmt.Errorf("encode order %d: %w", i+1, err)
		}
	}
	return nil
}
