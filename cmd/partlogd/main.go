package main

import (
	"flag"
	"os"

	"go.uber.org/zap"

	"github.com/kunleyo/partlog/internal/config"
	"github.com/kunleyo/partlog/internal/httpapi"
	"github.com/kunleyo/partlog/internal/log"
)

func main() {
	addr := flag.String("addr", ":8000", "address the produce/consume HTTP server listens on")
	topic := flag.String("topic", "default", "name of the partition to serve")
	maxLogBytes := flag.Uint64("max-log-bytes", 1024*1024, "byte cap on each segment's log file before it rotates")
	maxIndexBytes := flag.Uint64("max-index-bytes", 64*1024, "byte cap on each segment's index file")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	dataDir := config.DataDir()
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		logger.Fatal("failed to create data directory", zap.String("dir", dataDir), zap.Error(err))
	}

	partition, err := log.Create(*topic, dataDir, log.MaxBytes{Log: *maxLogBytes, Index: *maxIndexBytes}, logger)
	if err != nil {
		logger.Fatal("failed to load partition", zap.String("topic", *topic), zap.Error(err))
	}
	defer partition.Close()

	srv := httpapi.NewHTTPServer(*addr, partition, logger)
	logger.Info("listening", zap.String("addr", *addr), zap.String("topic", *topic), zap.String("data_dir", dataDir))
	logger.Fatal("server exited", zap.Error(srv.ListenAndServe()))
}
