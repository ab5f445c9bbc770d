package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"textcnn/internal/dataset"
	"textcnn/internal/nn"
	"textcnn/internal/tokenizer"
	"textcnn/internal/train"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <model-dir>",
	Short: "Evaluate a saved model on the held-out test split",
	Args:  cobra.ExactArgs(1),
	RunE:  runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	dir := args[0]
	net, labels, err := nn.LoadCheckpoint(dir)
	if err != nil {
		return err
	}
	tok, err := tokenizer.LoadFile(filepath.Join(dir, "tokenizer.json"))
	if err != nil {
		return err
	}
	log.Infof("loaded model from %s, %d trainable parameters, %d classes",
		dir, net.NumParams(), len(labels))

	corpus, err := loadCorpus(cfg)
	if err != nil {
		return err
	}
	if len(corpus.Labels) != len(labels) {
		return fmt.Errorf("corpus has %d categories but the model was trained on %d",
			len(corpus.Labels), len(labels))
	}

	// encode to the length the model was trained with, whatever the
	// current config says
	splits, err := encodeAndSplit(cfg, tok, corpus, net.Config().SeqLen)
	if err != nil {
		return err
	}

	loader := dataset.NewLoader(splits.Test, cfg.Training.BatchSize, false, cfg.Data.Seed)
	res, err := train.Evaluate(cmd.Context(), net, loader, nil, nil)
	if err != nil {
		return err
	}

	log.Infof("test: average loss %.4f, accuracy %d/%d (%.0f%%)",
		res.Loss, res.Correct, res.Total, res.Accuracy())
	fmt.Println(train.FormatConfusion(
		train.ConfusionMatrix(splits.Test.Y, res.Pred, len(labels)),
		labels,
	))
	return nil
}
