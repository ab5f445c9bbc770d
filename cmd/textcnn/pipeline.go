package main

import (
	"fmt"

	"textcnn/internal/config"
	"textcnn/internal/dataset"
	"textcnn/internal/newsgroups"
	"textcnn/internal/tokenizer"
)

// loadCorpus reads the configured corpus directory and refuses to run on
// an empty one.
func loadCorpus(cfg *config.AppConfig) (*newsgroups.Corpus, error) {
	corpus, err := newsgroups.Load(cfg.Data.CorpusDir)
	if err != nil {
		return nil, err
	}
	if corpus.Len() == 0 {
		return nil, fmt.Errorf("no documents found under %s", cfg.Data.CorpusDir)
	}
	log.Infof("loaded %d documents in %d categories", corpus.Len(), len(corpus.Labels))
	return corpus, nil
}

// encodeAndSplit turns the corpus into padded id sequences of length
// maxLen and partitions them with the configured sizes and seed. Running
// it twice with the same inputs reproduces the same partition.
func encodeAndSplit(cfg *config.AppConfig, tok *tokenizer.Tokenizer, corpus *newsgroups.Corpus, maxLen int) (dataset.Splits, error) {
	x := tok.EncodeAll(corpus.Texts(), maxLen)
	y := make([]int32, corpus.Len())
	for i, d := range corpus.Docs {
		y[i] = d.Label
	}
	splits, err := dataset.SplitTrainValTest(x, y, cfg.Data.TestSize, cfg.Data.ValidationSize, cfg.Data.Seed)
	if err != nil {
		return dataset.Splits{}, err
	}
	log.Infof("split: %d train, %d validation, %d test examples",
		splits.Train.Len(), splits.Val.Len(), splits.Test.Len())
	return splits, nil
}
