// Package circuit parses and evaluates Bristol-Fashion gate lists over
// secret-shared bits: a fixed, reusable substrate for the SHA-256 and
// AES-256 wrappers, and for any future primitive better expressed as a
// static gate list than hand-written share algebra.
package circuit

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/luxfi/ringshare/pkg/mul"
	"github.com/luxfi/ringshare/pkg/session"
	"github.com/luxfi/ringshare/pkg/share"
)

// GateType is one of the four gate kinds the Bristol-Fashion format
// names.
type GateType int

const (
	INP GateType = iota
	XOR
	INV
	AND
)

func parseGateType(s string) (GateType, error) {
	switch s {
	case "INP":
		return INP, nil
	case "XOR":
		return XOR, nil
	case "INV":
		return INV, nil
	case "AND":
		return AND, nil
	default:
		return 0, fmt.Errorf("circuit: unknown gate type %q", s)
	}
}

// Gate is one parsed gate-list line. Wire indices are 1-based, per
// this format's convention; wire 0 is unused.
type Gate struct {
	Type GateType
	Ins  []int
	Out  int
}

// Circuit is a parsed, depth-ordered Bristol-Fashion gate list.
type Circuit struct {
	NumWires int
	InputBundles []int
	// OutputBundles gives each output value's bit width; per the
	// standard Bristol convention, the output wires are the final
	// sum(OutputBundles) wires of the circuit, in bundle order.
	OutputBundles []int
	Gates         []Gate

	// depths[g] is the evaluation depth of Gates[g]: 0 for INP gates,
	// otherwise the max depth of any gate producing one of its input
	// wires, plus 1 for AND gates only.
	depths []int
	// byDepth[d] lists the indices into Gates at depth d.
	byDepth [][]int
}

// Parse reads a circuit in the text format spec.md §6 describes:
// a "num_gates num_wires" header, "num_input_bundles n1 n2 ..." and
// "num_output_bundles m1 m2 ..." lines, then one gate line per gate:
// "num_in num_out in0 [in1] out gate_type".
func Parse(r io.Reader) (*Circuit, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 1024*1024), 16*1024*1024)

	nextLine := func() ([]string, bool) {
		for sc.Scan() {
			fields := strings.Fields(sc.Text())
			if len(fields) == 0 {
				continue
			}
			return fields, true
		}
		return nil, false
	}

	header, ok := nextLine()
	if !ok || len(header) != 2 {
		return nil, fmt.Errorf("circuit: missing or malformed header line")
	}
	numGates, err := strconv.Atoi(header[0])
	if err != nil {
		return nil, fmt.Errorf("circuit: bad num_gates: %w", err)
	}
	numWires, err := strconv.Atoi(header[1])
	if err != nil {
		return nil, fmt.Errorf("circuit: bad num_wires: %w", err)
	}

	inLine, ok := nextLine()
	if !ok || len(inLine) < 1 {
		return nil, fmt.Errorf("circuit: missing input bundle line")
	}
	inputBundles, err := parseBundleCounts(inLine)
	if err != nil {
		return nil, err
	}

	outLine, ok := nextLine()
	if !ok || len(outLine) < 1 {
		return nil, fmt.Errorf("circuit: missing output bundle line")
	}
	outputBundles, err := parseBundleCounts(outLine)
	if err != nil {
		return nil, err
	}

	c := &Circuit{
		NumWires:      numWires,
		InputBundles:  inputBundles,
		OutputBundles: outputBundles,
		Gates:         make([]Gate, 0, numGates),
	}

	for {
		fields, ok := nextLine()
		if !ok {
			break
		}
		if len(fields) < 4 {
			return nil, fmt.Errorf("circuit: malformed gate line %q", strings.Join(fields, " "))
		}
		numIn, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("circuit: bad num_in: %w", err)
		}
		typ, err := parseGateType(fields[len(fields)-1])
		if err != nil {
			return nil, err
		}
		rest := fields[2 : len(fields)-1]
		if len(rest) != numIn+1 {
			return nil, fmt.Errorf("circuit: gate arity mismatch in %q", strings.Join(fields, " "))
		}
		ins := make([]int, numIn)
		for i := 0; i < numIn; i++ {
			v, err := strconv.Atoi(rest[i])
			if err != nil {
				return nil, fmt.Errorf("circuit: bad input wire: %w", err)
			}
			ins[i] = v
		}
		out, err := strconv.Atoi(rest[len(rest)-1])
		if err != nil {
			return nil, fmt.Errorf("circuit: bad output wire: %w", err)
		}
		c.Gates = append(c.Gates, Gate{Type: typ, Ins: ins, Out: out})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("circuit: scan error: %w", err)
	}

	c.computeDepths()
	return c, nil
}

func parseBundleCounts(fields []string) ([]int, error) {
	// fields[0] is the bundle count; the rest are its member sizes.
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil, fmt.Errorf("circuit: bad bundle count: %w", err)
	}
	if len(fields) != n+1 {
		return nil, fmt.Errorf("circuit: bundle count %d does not match %d sizes", n, len(fields)-1)
	}
	sizes := make([]int, n)
	for i := 0; i < n; i++ {
		v, err := strconv.Atoi(fields[i+1])
		if err != nil {
			return nil, fmt.Errorf("circuit: bad bundle size: %w", err)
		}
		sizes[i] = v
	}
	return sizes, nil
}

func (c *Circuit) computeDepths() {
	producedAt := make([]int, c.NumWires+1)
	for i := range producedAt {
		producedAt[i] = -1
	}

	c.depths = make([]int, len(c.Gates))
	maxDepth := 0
	for gi, g := range c.Gates {
		d := 0
		if g.Type != INP {
			for _, in := range g.Ins {
				if pd := producedAt[in]; pd > d {
					d = pd
				}
			}
			// Only AND gates consume an interactive round; a chain of
			// XOR/INV gates stays at its inputs' depth so it batches
			// into the same local pass as whatever AND round follows.
			if g.Type == AND {
				d++
			}
		}
		c.depths[gi] = d
		producedAt[g.Out] = d
		if d > maxDepth {
			maxDepth = d
		}
	}

	c.byDepth = make([][]int, maxDepth+1)
	for gi, d := range c.depths {
		c.byDepth[d] = append(c.byDepth[d], gi)
	}
}

// Eval evaluates the circuit over a flat stream of input bits consumed
// by INP gates in program order, returning the bits on the circuit's
// output wires (the final sum(OutputBundles) wires), concatenated in
// bundle order.
//
// Per depth: all AND gates at that depth run first, in a single
// batched AND round (their inputs all come from lower depths); then
// all INP/XOR/INV gates at that depth run locally in program order, so
// a local gate fed by an AND of the same depth sees its result,
// matching spec.md §4.7's "evaluate all local gates locally and all
// AND gates in one batched round" scheduling.
func Eval(ctx context.Context, ss *session.ServerState, c *Circuit, inputs []share.BinaryShare) ([]share.BinaryShare, error) {
	wires := make([]share.BinaryShare, c.NumWires+1)
	inputPos := 0

	for _, gis := range c.byDepth {
		var andGates []int
		for _, gi := range gis {
			if c.Gates[gi].Type == AND {
				andGates = append(andGates, gi)
			}
		}

		if len(andGates) > 0 {
			as := share.NewBinaryStringShare(len(andGates))
			bs := share.NewBinaryStringShare(len(andGates))
			for i, gi := range andGates {
				g := c.Gates[gi]
				as.SetBinaryShare(i, wires[g.Ins[0]])
				bs.SetBinaryShare(i, wires[g.Ins[1]])
			}
			res, err := mul.BatchAndBinaryStringShares(ctx, ss, as, bs)
			if err != nil {
				return nil, fmt.Errorf("circuit: AND round at depth: %w", err)
			}
			for i, gi := range andGates {
				wires[c.Gates[gi].Out] = res.GetBinaryShare(i)
			}
		}

		for _, gi := range gis {
			g := c.Gates[gi]
			switch g.Type {
			case INP:
				if inputPos >= len(inputs) {
					return nil, fmt.Errorf("circuit: input stream exhausted at gate %d", gi)
				}
				wires[g.Out] = inputs[inputPos]
				inputPos++
			case XOR:
				wires[g.Out] = wires[g.Ins[0]].Xor(wires[g.Ins[1]])
			case INV:
				wires[g.Out] = wires[g.Ins[0]].Not()
			}
		}
	}

	total := 0
	for _, n := range c.OutputBundles {
		total += n
	}
	out := make([]share.BinaryShare, 0, total)
	outStart := c.NumWires - total + 1
	for i := 0; i < total; i++ {
		out = append(out, wires[outStart+i])
	}
	return out, nil
}
