package store

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// StreamID is a 128-bit stream entry id, compared as an unsigned pair
// (ms, seq) per spec §3.
type StreamID struct {
	Ms  uint64
	Seq uint64
}

var (
	minStreamID = StreamID{0, 0}
	maxStreamID = StreamID{math.MaxUint64, math.MaxUint64}
)

func (id StreamID) Less(other StreamID) bool {
	if id.Ms != other.Ms {
		return id.Ms < other.Ms
	}
	return id.Seq < other.Seq
}

func (id StreamID) LessEqual(other StreamID) bool {
	return id == other || id.Less(other)
}

func (id StreamID) IsZero() bool { return id == minStreamID }

func (id StreamID) String() string {
	return fmt.Sprintf("%d-%d", id.Ms, id.Seq)
}

// parseStreamID parses a fully-qualified "<ms>-<seq>" id.
func parseStreamID(s string) (StreamID, error) {
	ms, seq, hasSeq, err := splitID(s)
	if err != nil {
		return StreamID{}, err
	}
	if !hasSeq {
		return StreamID{}, fmt.Errorf("invalid stream id %q", s)
	}
	return StreamID{Ms: ms, Seq: seq}, nil
}

func splitID(s string) (ms, seq uint64, hasSeq bool, err error) {
	parts := strings.SplitN(s, "-", 2)
	ms, err = strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return 0, 0, false, fmt.Errorf("invalid stream id %q", s)
	}
	if len(parts) == 1 {
		return ms, 0, false, nil
	}
	if parts[1] == "*" {
		return ms, 0, false, nil
	}
	seq, err = strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return 0, 0, false, fmt.Errorf("invalid stream id %q", s)
	}
	return ms, seq, true, nil
}

// parseRangeLower parses a XRANGE/XREAD lower bound: "-" means (0,0); a bare
// "<ms>" means (ms, 0).
func parseRangeLower(s string) (StreamID, error) {
	if s == "-" {
		return minStreamID, nil
	}
	ms, seq, hasSeq, err := splitID(s)
	if err != nil {
		return StreamID{}, err
	}
	if !hasSeq {
		seq = 0
	}
	return StreamID{Ms: ms, Seq: seq}, nil
}

// parseRangeUpper parses a XRANGE upper bound: "+" means (max,max); a bare
// "<ms>" means (ms, max-seq).
func parseRangeUpper(s string) (StreamID, error) {
	if s == "+" {
		return maxStreamID, nil
	}
	ms, seq, hasSeq, err := splitID(s)
	if err != nil {
		return StreamID{}, err
	}
	if !hasSeq {
		seq = math.MaxUint64
	}
	return StreamID{Ms: ms, Seq: seq}, nil
}
