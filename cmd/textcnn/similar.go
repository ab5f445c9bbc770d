package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"textcnn/internal/glove"
)

var topK int

var similarCmd = &cobra.Command{
	Use:   "similar <token> [token ...]",
	Short: "List the nearest neighbors of a token in the embedding space",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSimilar,
}

func init() {
	similarCmd.Flags().IntVarP(&topK, "top", "k", 10, "number of neighbors to print")
	rootCmd.AddCommand(similarCmd)
}

func runSimilar(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	table, err := glove.Load(cfg.Data.GlovePath)
	if err != nil {
		return err
	}
	log.Infof("found %d word vectors of dimension %d", table.Len(), table.Dim())

	for _, token := range args {
		neighbors, err := table.Nearest(token, topK)
		if err != nil {
			return err
		}
		fmt.Println(token)
		for _, n := range neighbors {
			fmt.Printf("  %-24s %.4f\n", n.Token, n.Score)
		}
	}
	return nil
}
