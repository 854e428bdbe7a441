package spectrum

import (
	"bufio"
	"bytes"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// ExternalSpectrumError reports a failure to obtain or parse the output of
// an external spectrum command.
type ExternalSpectrumError struct {
	Command string
	Reason  string
	Err     error
}

func (e *ExternalSpectrumError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("external spectrum command %q: %s: %v", e.Command, e.Reason, e.Err)
	}
	return fmt.Sprintf("external spectrum command %q: %s", e.Command, e.Reason)
}

func (e *ExternalSpectrumError) Unwrap() error { return e.Err }

// ExternalSource reads a precomputed spectrum from the standard output of a
// shell command. Each output line carries a wavenumber, the scalar spectrum
// and, when tensors are requested, the tensor spectrum.
type ExternalSource struct {
	ctx   *Context
	table *Table
}

// NewExternalSource runs the command, appending the parameters as
// arguments, and tabulates its output. A command starting with "cat " is
// run verbatim so a plain data file can be passed through unchanged.
func NewExternalSource(ctx *Context, command string, args []float64) (*ExternalSource, error) {
	if ctx.ICSize(Scalar) > 1 {
		return nil, fmt.Errorf("external spectra support only adiabatic initial conditions")
	}

	line := command
	if !strings.HasPrefix(command, "cat ") {
		var b strings.Builder
		b.WriteString(command)
		for _, a := range args {
			fmt.Fprintf(&b, " %e", a)
		}
		line = b.String()
	}

	cmd := exec.Command("sh", "-c", line)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		reason := "exited with error"
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			reason = fmt.Sprintf("exited with error: %s", msg)
		}
		return nil, &ExternalSpectrumError{Command: line, Reason: reason, Err: err}
	}

	k, ps, pt, err := parseSpectrumOutput(&stdout, ctx.HasTensors)
	if err != nil {
		return nil, &ExternalSpectrumError{Command: line, Reason: err.Error()}
	}

	n := len(k)
	if n < 2 {
		return nil, &ExternalSpectrumError{Command: line,
			Reason: fmt.Sprintf("produced only %d sample(s), need at least 2", n)}
	}
	// the spline needs two support points beyond each edge of the
	// requested range
	if k[1] > ctx.KMin {
		return nil, &ExternalSpectrumError{Command: line,
			Reason: fmt.Sprintf("covers k >= %e but k_min = %e", k[1], ctx.KMin)}
	}
	if k[n-2] < ctx.KMax {
		return nil, &ExternalSpectrumError{Command: line,
			Reason: fmt.Sprintf("covers k <= %e but k_max = %e", k[n-2], ctx.KMax)}
	}

	lnk := make([]float64, n)
	for i := range k {
		lnk[i] = math.Log(k[i])
	}
	table, err := NewTable(ctx, lnk)
	if err != nil {
		return nil, err
	}
	for ik := range lnk {
		if ctx.ModeIndex(Scalar) >= 0 {
			table.set(Scalar, ik, 0, math.Log(ps[ik]), true)
		}
		if ctx.ModeIndex(Tensor) >= 0 {
			table.set(Tensor, ik, 0, math.Log(pt[ik]), true)
		}
	}
	if err := table.finalize(); err != nil {
		return nil, err
	}

	return &ExternalSource{ctx: ctx, table: table}, nil
}

// parseSpectrumOutput reads whitespace-separated sample lines and checks
// that the wavenumbers are positive and strictly increasing.
func parseSpectrumOutput(r *bytes.Buffer, wantTensors bool) (k, ps, pt []float64, err error) {
	want := 2
	if wantTensors {
		want = 3
	}

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < want {
			return nil, nil, nil, fmt.Errorf("line %d has %d column(s), need %d", lineNo, len(fields), want)
		}
		vals := make([]float64, want)
		for i := 0; i < want; i++ {
			vals[i], err = strconv.ParseFloat(fields[i], 64)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("line %d column %d: %v", lineNo, i+1, err)
			}
		}
		if vals[0] <= 0 {
			return nil, nil, nil, fmt.Errorf("line %d: wavenumber %e must be positive", lineNo, vals[0])
		}
		if len(k) > 0 && vals[0] <= k[len(k)-1] {
			return nil, nil, nil, fmt.Errorf("line %d: wavenumbers not strictly increasing", lineNo)
		}
		if vals[1] <= 0 {
			return nil, nil, nil, fmt.Errorf("line %d: spectrum %e must be positive", lineNo, vals[1])
		}
		k = append(k, vals[0])
		ps = append(ps, vals[1])
		if wantTensors {
			if vals[2] <= 0 {
				return nil, nil, nil, fmt.Errorf("line %d: tensor spectrum %e must be positive", lineNo, vals[2])
			}
			pt = append(pt, vals[2])
		}
	}
	if err := sc.Err(); err != nil {
		return nil, nil, nil, err
	}
	return k, ps, pt, nil
}

// Table exposes the tabulated form.
func (s *ExternalSource) Table() *Table { return s.table }

// At interpolates inside the tabulated range.
func (s *ExternalSource) At(m Mode, f Format, input float64, out []float64) error {
	return s.table.At(m, f, input, out)
}
