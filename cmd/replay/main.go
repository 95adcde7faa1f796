package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"spl-token-indexer-sol/internal/consts"
	"spl-token-indexer-sol/internal/logic/core"
	"spl-token-indexer-sol/internal/logic/fixture"
	"spl-token-indexer-sol/internal/logic/lookuptable"
	"spl-token-indexer-sol/internal/logic/walker"
	"spl-token-indexer-sol/internal/sink"
	"spl-token-indexer-sol/pkg/logger"
)

var (
	inputFile = flag.String("i", "", "block file: .yaml fixture or protobuf SubscribeUpdateBlock (.pb)")
	target    = flag.String("target", consts.TokenProgramStr, "target program")
	legacy    = flag.Bool("legacy", true, "legacy position fields")
	logLevel  = flag.String("log-level", "warn", "log level")
)

// 离线解析单个区块，事件逐行输出 JSON 到 stdout
func main() {
	flag.Parse()
	if *inputFile == "" {
		flag.Usage()
		os.Exit(2)
	}
	if err := logger.InitLogger(logger.LogOption{Format: "console", Level: *logLevel}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(context.Background()); err != nil {
		logger.Errorf("replay failed: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	store := lookuptable.NewMemoryStore()

	var (
		block *core.Block
		err   error
	)
	if strings.HasSuffix(*inputFile, ".yaml") || strings.HasSuffix(*inputFile, ".yml") {
		f, err := fixture.LoadYAML(*inputFile)
		if err != nil {
			return err
		}
		f.Seed(store)
		if block, err = f.Block(); err != nil {
			return err
		}
	} else if block, err = fixture.LoadProtoBlock(*inputFile); err != nil {
		return err
	}

	w := walker.NewBlockWalker(walker.Options{TargetProgram: *target, LegacyPositions: *legacy}, store)
	res, err := w.Walk(ctx, block)
	if err != nil {
		return err
	}

	out := sink.NewStdoutSink(os.Stdout)
	if err := out.Publish(ctx, res.Slot, res.Events); err != nil {
		return err
	}

	stats, err := lookuptable.NewTracker(store).Apply(ctx, block)
	if err != nil {
		return err
	}
	logger.Infof("slot %d: events=%d skipped=%d failed=%d alt(created=%d extended=%d closed=%d)",
		res.Slot, len(res.Events), len(res.Skipped), res.Stats.FailedTransactions,
		stats.Created, stats.Extended, stats.Closed)
	return nil
}
