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

package compact

import (
	"strings"

	"github.com/pkg/errors"
)

// Direction selects which adjacency of a node an operation works on.
type Direction uint8

const (
	Outgoing Direction = iota
	Incoming
	Both
)

func (d Direction) String() string {
	switch d {
	case Outgoing:
		return "outgoing"
	case Incoming:
		return "incoming"
	case Both:
		return "both"
	default:
		return "unknown"
	}
}

// ParseDirection accepts the usual spellings: {out, outgoing, >}, {in,
// incoming, <} and {both, <>}.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "out", "outgoing", ">":
		return Outgoing, nil
	case "in", "incoming", "<":
		return Incoming, nil
	case "both", "<>":
		return Both, nil
	default:
		return Outgoing, errors.Errorf("unknown direction %q", s)
	}
}
