package main

import (
	"context"
	"flag"
	"log"

	"go.uber.org/zap"

	"github.com/yswa-var/rfp-bid/internal/builder"
	"github.com/yswa-var/rfp-bid/internal/entity"
)

// Flags are registered before builder.BuildIndexer triggers flag.Parse via
// config loading.
var (
	storeFlag = flag.String("store", "", "store to rebuild (templates, examples, session); empty indexes all unready stores")
	dirFlag   = flag.String("dir", "", "document directory; defaults to the store's configured corpus directory")
)

func main() {
	corpus, logger, closeDB, err := builder.BuildIndexer()
	if err != nil {
		log.Fatal("Failed to build indexer:", err)
	}
	defer closeDB()

	ctx := context.Background()

	if *storeFlag == "" {
		if err := corpus.EnsureReady(ctx); err != nil {
			logger.Fatal("corpus setup failed", zap.Error(err))
		}
		logger.Info("all stores ready")
		return
	}

	store := entity.StoreName(*storeFlag)
	if err := store.Validate(); err != nil {
		logger.Fatal("unknown store", zap.String("store", *storeFlag))
	}

	dir := *dirFlag
	if dir == "" {
		logger.Fatal("-dir is required when -store is set")
	}

	if err := corpus.IndexDirectory(ctx, store, dir); err != nil {
		logger.Fatal("indexing failed",
			zap.String("store", *storeFlag),
			zap.String("dir", dir),
			zap.Error(err))
	}
	logger.Info("store indexed",
		zap.String("store", *storeFlag),
		zap.String("dir", dir))
}
