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
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/weaviate/graphkit/graph/compact"
	"github.com/weaviate/graphkit/memwatch"
)

// loadEdgeList reads a whitespace-separated "source target" pair per line
// (original node ids), assigns dense internal ids in order of first
// appearance and builds the compact graph. Blank lines and lines starting
// with '#' are skipped.
//
// This loader stands in for the source-database collaborator; the engine
// itself never sees where the pairs come from.
func loadEdgeList(r io.Reader, undirected bool, tracker *memwatch.Tracker,
	logger logrus.FieldLogger,
) (*compact.Graph, error) {
	type edge struct{ source, target uint64 }

	var edges []edge
	internal := make(map[uint64]int64)
	var originals []uint64

	intern := func(original uint64) {
		if _, ok := internal[original]; !ok {
			internal[original] = int64(len(originals))
			originals = append(originals, original)
		}
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) < 2 {
			return nil, errors.Errorf("line %d: expected \"source target\", got %q", line, text)
		}
		source, err := strconv.ParseUint(fields[0], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d: source id", line)
		}
		target, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d: target id", line)
		}
		intern(source)
		intern(target)
		edges = append(edges, edge{source, target})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read edge list")
	}

	opts := []compact.BuilderOption{
		compact.WithTracker(tracker),
		compact.WithLogger(logger),
	}
	if undirected {
		opts = append(opts, compact.WithUndirected())
	}

	builder := compact.NewBuilder(int64(len(originals)), opts...)
	for i, original := range originals {
		if err := builder.SetOriginalID(int64(i), original); err != nil {
			return nil, err
		}
	}
	for _, e := range edges {
		if err := builder.AddRelationship(internal[e.source], internal[e.target]); err != nil {
			return nil, err
		}
	}
	return builder.Build()
}
