//                           _       _
// __      _____  __ ___   ___  __ _| |_ ___
// \ \ /\ / / _ \/ _` \ \ / / |/ _` | __/ _ \
//  \ V  V /  __/ (_| |\ V /| | (_| | ||  __/
//   \_/\_/ \___|\__,_| \_/ |_|\__,_|\__\___|
//
//  Copyright © 2016 - 2024 Weaviate B.V. All rights reserved.
//
//  CONTACT: hello@weaviate.io
//

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"sort"
	"syscall"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/weaviate/graphkit/algorithms"
	"github.com/weaviate/graphkit/algorithms/centrality"
	enterrors "github.com/weaviate/graphkit/entities/errors"
	"github.com/weaviate/graphkit/graph/compact"
	"github.com/weaviate/graphkit/memwatch"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	app := &cli.App{
		Name:  "graphkit",
		Usage: "load an edge list into a compact graph and run a centrality algorithm",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "edge-list file, one \"source target\" pair per line",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "algorithm",
				Aliases: []string{"a"},
				Usage:   "degree or betweenness",
				Value:   "degree",
			},
			&cli.StringFlag{
				Name:  "direction",
				Usage: "out, in or both",
				Value: "out",
			},
			&cli.BoolFlag{
				Name:  "undirected",
				Usage: "mirror every relationship on load",
			},
			&cli.BoolFlag{
				Name:  "weighted",
				Usage: "divide degree scores by the node count",
			},
			&cli.IntFlag{
				Name:    "concurrency",
				Aliases: []string{"c"},
				Usage:   "worker count, 1 runs the sequential variant",
				Value:   runtime.GOMAXPROCS(0),
			},
			&cli.IntFlag{
				Name:  "top",
				Usage: "number of results to print",
				Value: 10,
			},
			&cli.StringFlag{
				Name:  "metrics-addr",
				Usage: "serve prometheus metrics on this address while running",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "debug logging",
			},
		},
		Action: func(c *cli.Context) error {
			if c.Bool("verbose") {
				logger.SetLevel(logrus.DebugLevel)
			}
			return run(c, logger)
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.WithError(err).Fatal("graphkit failed")
	}
}

func run(c *cli.Context, logger *logrus.Logger) error {
	direction, err := compact.ParseDirection(c.String("direction"))
	if err != nil {
		return err
	}

	tracker := memwatch.NewTracker("compact_graph")
	if addr := c.String("metrics-addr"); addr != "" {
		if err := serveMetrics(addr, tracker, logger); err != nil {
			return err
		}
	}

	file, err := os.Open(c.String("input"))
	if err != nil {
		return errors.Wrap(err, "open edge list")
	}
	defer file.Close()

	graph, err := loadEdgeList(file, c.Bool("undirected"), tracker, logger)
	if err != nil {
		return errors.Wrap(err, "load edge list")
	}
	defer func() {
		if err := graph.Release(); err != nil {
			logger.WithError(err).Error("release graph")
		}
	}()

	logger.WithFields(logrus.Fields{
		"nodes":  graph.NodeCount(),
		"memory": memwatch.HumanReadable(tracker.Snapshot()),
	}).Info("graph loaded")

	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	algorithm, err := buildAlgorithm(c, graph, direction, tracker, logger)
	if err != nil {
		return err
	}
	defer algorithm.(algorithms.Releasable).Release()

	if err := algorithm.Compute(ctx); err != nil {
		return errors.Wrap(err, "compute")
	}
	if ctx.Err() != nil {
		logger.Warn("interrupted, results are partial")
	}

	printTop(algorithm.(resulter).Results(), c.Int("top"))
	return nil
}

type resulter interface {
	Results() []centrality.Result
}

func buildAlgorithm(c *cli.Context, graph *compact.Graph,
	direction compact.Direction, tracker *memwatch.Tracker, logger *logrus.Logger,
) (algorithms.Computable, error) {
	concurrency := c.Int("concurrency")
	name := c.String("algorithm")

	switch name {
	case "degree":
		progress := algorithms.NewProgressLogger(logger, "degree centrality")
		if concurrency > 1 {
			return centrality.NewParallelDegreeCentrality(graph, logger, concurrency).
				WithDirection(direction).
				WithWeighted(c.Bool("weighted")).
				WithTracker(tracker).
				WithProgressLogger(progress), nil
		}
		return centrality.NewDegreeCentrality(graph).
			WithDirection(direction).
			WithWeighted(c.Bool("weighted")).
			WithTracker(tracker).
			WithProgressLogger(progress), nil
	case "betweenness":
		progress := algorithms.NewProgressLogger(logger, "betweenness centrality")
		if concurrency > 1 {
			return centrality.NewParallelBetweennessCentrality(graph, logger, concurrency).
				WithDirection(direction).
				WithTracker(tracker).
				WithProgressLogger(progress), nil
		}
		return centrality.NewBetweennessCentrality(graph).
			WithDirection(direction).
			WithTracker(tracker).
			WithProgressLogger(progress), nil
	default:
		return nil, errors.Errorf("unknown algorithm %q, want degree or betweenness", name)
	}
}

func serveMetrics(addr string, tracker *memwatch.Tracker,
	logger *logrus.Logger,
) error {
	registry := prometheus.NewRegistry()
	if err := tracker.Register(registry); err != nil {
		return errors.Wrap(err, "register metrics")
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	enterrors.GoWrapper(func() {
		logger.WithField("addr", addr).Info("serving metrics")
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.WithError(err).Error("metrics server stopped")
		}
	}, logger)
	return nil
}

func printTop(results []centrality.Result, top int) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Centrality != results[j].Centrality {
			return results[i].Centrality > results[j].Centrality
		}
		return results[i].NodeID < results[j].NodeID
	})
	if top > len(results) {
		top = len(results)
	}
	for _, result := range results[:top] {
		fmt.Printf("%d\t%g\n", result.NodeID, result.Centrality)
	}
}
