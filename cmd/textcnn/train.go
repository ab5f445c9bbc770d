package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"textcnn/internal/device"
	"textcnn/internal/domain"
	"textcnn/internal/experiment"
	"textcnn/internal/glove"
	"textcnn/internal/logging"
	"textcnn/internal/nn"
	"textcnn/internal/tokenizer"
	"textcnn/internal/train"
	"textcnn/internal/tui"
)

var (
	saveDir string
	useTUI  bool
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the classifier on the configured corpus",
	RunE:  runTrain,
}

func init() {
	trainCmd.Flags().StringVar(&saveDir, "save", "", "directory to write the trained model to")
	trainCmd.Flags().BoolVar(&useTUI, "tui", false, "render a terminal dashboard instead of log lines")
	rootCmd.AddCommand(trainCmd)
}

func runTrain(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log.Infof("running on %s", device.Probe())

	table, err := glove.Load(cfg.Data.GlovePath)
	if err != nil {
		return err
	}
	log.Infof("found %d word vectors of dimension %d", table.Len(), table.Dim())
	for _, w := range []string{"the", "and"} {
		if v, ok := table.Vector(w); ok && len(v) >= 3 {
			log.Debugf("%q -> [%.4f %.4f %.4f ...]", w, v[0], v[1], v[2])
		}
	}

	corpus, err := loadCorpus(cfg)
	if err != nil {
		return err
	}

	tok := tokenizer.New(cfg.Data.MaxVocab)
	tok.Fit(corpus.Texts())
	log.Infof("found %d unique tokens", tok.Len())

	splits, err := encodeAndSplit(cfg, tok, corpus, cfg.Data.MaxSeqLen)
	if err != nil {
		return err
	}

	emb, stats, err := glove.BuildMatrix(tok.WordIndex(), table, cfg.Data.MaxVocab, cfg.Data.EmbeddingDim)
	if err != nil {
		return err
	}
	log.Infof("embedding matrix %dx%d, coverage %.1f%%", stats.Rows, stats.Dim, stats.Coverage())

	net, err := nn.New(nn.Config{
		SeqLen:     cfg.Data.MaxSeqLen,
		NumClasses: len(corpus.Labels),
		Channels:   cfg.Model.Channels,
		Kernel:     cfg.Model.KernelSize,
		Pool:       cfg.Model.PoolSize,
		Hidden:     cfg.Model.HiddenSize,
		InitSeed:   cfg.Data.Seed,
	}, emb)
	if err != nil {
		return err
	}
	for _, line := range strings.Split(net.Summary(), "\n") {
		log.Info(line)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var reporters []domain.Reporter
	if !cfg.Experiment.Disabled {
		rec := experiment.New(cfg.Experiment.LogDir, log)
		defer rec.Close()
		if rec.Enabled() {
			log.Infof("recording metrics to %s", rec.Dir())
		}
		reporters = append(reporters, rec)
	}

	var res train.Result
	if useTUI {
		prog := tea.NewProgram(tui.New(cancel))
		rep := tui.NewReporter(prog)
		trainer := train.New(net, cfg.Training, train.Multi(append(reporters, rep)...))

		// the dashboard owns the terminal, keep log lines off it
		logging.SetOutput(io.Discard)
		errCh := make(chan error, 1)
		go func() {
			var runErr error
			res, runErr = trainer.Run(ctx, splits, cfg.Data.Seed)
			if runErr != nil {
				rep.Fail(runErr)
			}
			errCh <- runErr
		}()
		_, uiErr := prog.Run()
		logging.SetOutput(os.Stderr)
		if uiErr != nil {
			cancel()
			<-errCh
			return uiErr
		}
		cancel()
		if runErr := <-errCh; runErr != nil {
			if errors.Is(runErr, context.Canceled) {
				log.Warn("training stopped before completion")
				return nil
			}
			return runErr
		}
	} else {
		trainer := train.New(net, cfg.Training, train.Multi(append(reporters, train.NewLogReporter(log, cfg.Training.LogInterval))...))

		var runErr error
		res, runErr = trainer.Run(ctx, splits, cfg.Data.Seed)
		if runErr != nil {
			if errors.Is(runErr, context.Canceled) {
				log.Warn("training interrupted")
				return nil
			}
			return runErr
		}
		fmt.Println(train.FormatConfusion(
			train.ConfusionMatrix(splits.Test.Y, res.Test.Pred, len(corpus.Labels)),
			corpus.Labels,
		))
	}

	if saveDir != "" {
		// a failed save must not turn a finished run into a failure
		err := nn.SaveCheckpoint(saveDir, net, corpus.Labels)
		if err == nil {
			err = tok.Save(filepath.Join(saveDir, "tokenizer.json"))
		}
		if err != nil {
			log.WithError(err).Error("failed to save model")
		} else {
			log.Infof("model written to %s", saveDir)
		}
	}
	return nil
}
