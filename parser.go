package knitout

import (
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/knitout-go/knitout/internal/lineio"
)

var (
	reBlank       = regexp.MustCompile(`^\s*$`)
	reMagic       = regexp.MustCompile(`(?i)^;!knitout-(\d+)\s*$`)
	reHeader      = regexp.MustCompile(`(?i)^;;\s*([A-Za-z][A-Za-z0-9-]*)\s*:\s*(.*?)\s*$`)
	reNoOp        = regexp.MustCompile(`(?i)^;\s*No-Op:\s*(.*?)\s*$`)
	reBreakpoint  = regexp.MustCompile(`(?i)^;\s*BreakPoint\s*(?::\s*(.*?))?\s*$`)
	reComment     = regexp.MustCompile(`^;\s?(.*)$`)
	reCodeComment = regexp.MustCompile(`^([^;]*?)\s*(?:;\s?(.*))?$`)
	reCarrierKey  = regexp.MustCompile(`(?i)^Yarn-(\d+)$`)
)

// ParseProgram parses knitout source text into a Program. Each non-blank
// line produces exactly one Instruction, numbered by its 0-based position
// in the input text.
func ParseProgram(source, text string) (*Program, error) {
	p := &Program{}
	for i, rawLine := range lineio.ReadLines(text) {
		raw := strings.TrimSuffix(rawLine, "\r")
		if err := parseAndAppendLine(p, source, i, raw); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// ParseReader streams r through a lineio.Reader rather than buffering it
// whole, so each line is parsed and attributed to its real line number as
// it is read.
func ParseReader(source string, r io.Reader) (*Program, error) {
	p := &Program{}
	lr := lineio.NewReader(r)
	seen := 0
	for {
		_, _, rerr := lr.ReadRune()
		if lr.Last.Line > seen {
			seen = lr.Last.Line
			raw := strings.TrimSuffix(lr.Last.Buffer.String(), "\r")
			if err := parseAndAppendLine(p, source, seen-1, raw); err != nil {
				return nil, err
			}
		}
		if rerr != nil {
			if rerr == io.EOF {
				break
			}
			return nil, rerr
		}
	}
	return p, nil
}

// parseAndAppendLine parses one raw source line (already stripped of its
// trailing newline) and, unless it is blank, appends the resulting
// instruction to p with its original line number and source name
// attached.
func parseAndAppendLine(p *Program, source string, lineNum int, raw string) error {
	if reBlank.MatchString(raw) {
		return nil
	}
	inst, err := parseLine(raw)
	if err != nil {
		switch e := err.(type) {
		case ParseError:
			e.Line, e.Text, e.Source = lineNum, raw, source
			return e
		case IncompleteLineError:
			e.Line, e.Text, e.Source = lineNum, raw, source
			return e
		default:
			return ParseError{Line: lineNum, Text: raw, Source: source, Cause: err}
		}
	}
	orig := lineNum
	inst.OriginalLine = &orig
	inst.Source = source
	p.Append(inst)
	return nil
}

func parseLine(raw string) (Instruction, error) {
	if m := reMagic.FindStringSubmatch(raw); m != nil {
		v, err := strconv.Atoi(m[1])
		if err != nil {
			return Instruction{}, ParseError{Cause: err}
		}
		return NewVersion(v), nil
	}

	if m := reHeader.FindStringSubmatch(raw); m != nil {
		return parseHeaderLine(m[1], m[2])
	}

	if m := reNoOp.FindStringSubmatch(raw); m != nil {
		wrapped, err := parseCode(m[1])
		if err != nil {
			return Instruction{}, err
		}
		return NewNoOp(wrapped, ""), nil
	}

	if m := reBreakpoint.FindStringSubmatch(raw); m != nil {
		return NewBreakpoint(m[1]), nil
	}

	if strings.HasPrefix(strings.TrimSpace(raw), ";") {
		m := reComment.FindStringSubmatch(raw)
		if m == nil {
			return Instruction{}, ParseError{Cause: errBadComment}
		}
		return NewComment(m[1]), nil
	}

	m := reCodeComment.FindStringSubmatch(raw)
	if m == nil {
		return Instruction{}, ParseError{Cause: errBadLine}
	}
	codeText, comment := strings.TrimSpace(m[1]), m[2]
	inst, err := parseCode(codeText)
	if err != nil {
		return Instruction{}, err
	}
	inst.Comment = trimmedComment(comment)
	return inst, nil
}

func parseHeaderLine(key, value string) (Instruction, error) {
	switch strings.ToLower(key) {
	case "machine":
		return NewMachine(parseMachineType(value)), nil
	case "gauge":
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return Instruction{}, ParseError{Cause: err}
		}
		return NewGauge(n), nil
	case "position":
		return NewPosition(parsePosition(value)), nil
	case "carriers":
		fields := strings.Fields(value)
		ids := make([]int, 0, len(fields))
		for _, s := range fields {
			if n, err := strconv.Atoi(s); err == nil {
				ids = append(ids, n)
			}
		}
		return NewCarriers(CarriersFromIDs(ids...)), nil
	default:
		if m := reCarrierKey.FindStringSubmatch(key); m != nil {
			return NewYarn(m[1], value), nil
		}
		return Instruction{}, IncompleteLineError{}
	}
}

func parseMachineType(s string) MachineType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "swg":
		return MachineSWG
	case "kniterate":
		return MachineKniterate
	default:
		return MachineUnspecified
	}
}

func parsePosition(s string) Position {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left":
		return PositionLeft
	case "right":
		return PositionRight
	case "center":
		return PositionCenter
	case "keep":
		return PositionKeep
	default:
		return PositionUnspecified
	}
}

// parseCode parses the grammar's `code` production (no trailing comment).
func parseCode(codeText string) (Instruction, error) {
	fields := strings.Fields(codeText)
	if len(fields) == 0 {
		return Instruction{}, IncompleteLineError{}
	}
	op := strings.ToLower(fields[0])
	args := fields[1:]

	switch op {
	case "in":
		return parseCarrierOp(NewIn, args)
	case "inhook":
		return parseCarrierOp(NewInhook, args)
	case "releasehook":
		return parseCarrierOp(NewReleasehook, args)
	case "out":
		return parseCarrierOp(NewOut, args)
	case "outhook":
		return parseCarrierOp(NewOuthook, args)
	case "pause":
		if len(args) != 0 {
			return Instruction{}, IncompleteLineError{}
		}
		return NewPause(), nil
	case "rack":
		if len(args) != 1 {
			return Instruction{}, IncompleteLineError{}
		}
		rk, err := ParseRacking(args[0])
		if err != nil {
			return Instruction{}, ParseError{Cause: err}
		}
		return NewRack(rk), nil
	case "knit", "tuck", "miss":
		return parseDirectedNeedleOp(op, args)
	case "split":
		return parseSplit(args)
	case "xfer":
		return parseXfer(args)
	case "drop":
		return parseDrop(args)
	default:
		return Instruction{}, ParseError{Cause: errBadLine}
	}
}

func parseCarrierOp(ctor func(int) Instruction, args []string) (Instruction, error) {
	if len(args) != 1 {
		return Instruction{}, IncompleteLineError{}
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return Instruction{}, ParseError{Cause: err}
	}
	return ctor(id), nil
}

func parseDirectedNeedleOp(op string, args []string) (Instruction, error) {
	if len(args) < 3 {
		return Instruction{}, IncompleteLineError{}
	}
	dir, ok := ParseDirection(args[0])
	if !ok {
		return Instruction{}, ParseError{Cause: errBadDirection}
	}
	needle, err := parseNeedle(args[1])
	if err != nil {
		return Instruction{}, ParseError{Cause: err}
	}
	cs, err := parseCarrierSet(args[2:])
	if err != nil {
		return Instruction{}, err
	}
	switch op {
	case "knit":
		return NewKnit(dir, needle, cs), nil
	case "tuck":
		return NewTuck(dir, needle, cs), nil
	case "miss":
		return NewMiss(dir, needle, cs), nil
	default:
		return NewKick(dir, needle, cs), nil
	}
}

func parseSplit(args []string) (Instruction, error) {
	if len(args) < 4 {
		return Instruction{}, IncompleteLineError{}
	}
	dir, ok := ParseDirection(args[0])
	if !ok {
		return Instruction{}, ParseError{Cause: errBadDirection}
	}
	from, err := parseNeedle(args[1])
	if err != nil {
		return Instruction{}, ParseError{Cause: err}
	}
	to, err := parseNeedle(args[2])
	if err != nil {
		return Instruction{}, ParseError{Cause: err}
	}
	cs, err := parseCarrierSet(args[3:])
	if err != nil {
		return Instruction{}, err
	}
	return NewSplit(dir, from, to, cs), nil
}

func parseXfer(args []string) (Instruction, error) {
	if len(args) != 2 {
		return Instruction{}, IncompleteLineError{}
	}
	from, err := parseNeedle(args[0])
	if err != nil {
		return Instruction{}, ParseError{Cause: err}
	}
	to, err := parseNeedle(args[1])
	if err != nil {
		return Instruction{}, ParseError{Cause: err}
	}
	return NewXfer(from, to), nil
}

func parseDrop(args []string) (Instruction, error) {
	if len(args) != 1 {
		return Instruction{}, IncompleteLineError{}
	}
	needle, err := parseNeedle(args[0])
	if err != nil {
		return Instruction{}, ParseError{Cause: err}
	}
	return NewDrop(needle), nil
}

var reNeedle = regexp.MustCompile(`(?i)^([fb])(s?)(-?\d+)$`)

func parseNeedle(s string) (Needle, error) {
	m := reNeedle.FindStringSubmatch(s)
	if m == nil {
		return Needle{}, errBadNeedle
	}
	bed := Front
	if strings.EqualFold(m[1], "b") {
		bed = Back
	}
	slot, err := strconv.Atoi(m[3])
	if err != nil {
		return Needle{}, err
	}
	return Needle{Bed: bed, Slot: slot, IsSlider: m[2] != ""}, nil
}

func parseCarrierSet(args []string) (CarrierSet, error) {
	if len(args) == 0 {
		return nil, IncompleteLineError{}
	}
	cs := make(CarrierSet, 0, len(args))
	for _, a := range args {
		id, err := strconv.Atoi(a)
		if err != nil {
			return nil, ParseError{Cause: err}
		}
		cs = append(cs, id)
	}
	return cs, nil
}
