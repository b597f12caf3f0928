package directive

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/virtualphotonics/mcbatch/internal/sweep"
)

// CPUCountAll requests one worker per available CPU.
const CPUCountAll = "all"

// defaultCPUCount is used when cpucount is absent or unusable.
const defaultCPUCount = 1

// SweepRequest is one parsed sweep directive. The axis name is resolved
// against a template later, once the template is loaded.
type SweepRequest struct {
	Name string
	Spec sweep.Spec
}

// Options is the immutable result of folding a directive list.
type Options struct {
	help       bool
	helpTopic  string
	genInFiles bool
	inFile     string
	inFiles    []string
	outName    string
	outPath    string
	cpuCount   int
	sweeps     []SweepRequest
}

// Fold builds Options from directives in order. Scalar directives given more
// than once keep the last value; infiles and sweep directives accumulate.
// numCPU resolves cpucount=all. Problems that do not stop the batch, such as
// a malformed sweep or cpucount, are returned as warnings and the directive
// is skipped.
func Fold(directives []Directive, numCPU int) (Options, []string) {
	opts := Options{cpuCount: defaultCPUCount}
	var warnings []string

	for _, d := range directives {
		switch d.Kind {
		case KindHelp:
			opts.help = true
			opts.helpTopic = strings.ToLower(d.Value())
		case KindGenInFiles:
			opts.genInFiles = true
		case KindInFile:
			opts.inFile = d.Value()
		case KindInFiles:
			for _, v := range d.Values {
				if v != "" {
					opts.inFiles = append(opts.inFiles, v)
				}
			}
		case KindOutName:
			opts.outName = d.Value()
		case KindOutPath:
			opts.outPath = d.Value()
		case KindCPUCount:
			n, err := parseCPUCount(d.Value(), numCPU)
			if err != nil {
				warnings = append(warnings, err.Error())
				continue
			}
			opts.cpuCount = n
		case KindParamSweep, KindParamSweepDelta, KindParamSweepList:
			name, spec, err := sweep.ParseSpec(sweepMode(d.Kind), d.Values)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("%s skipped: %v", d.Kind, err))
				continue
			}
			opts.sweeps = append(opts.sweeps, SweepRequest{Name: name, Spec: spec})
		}
	}
	return opts, warnings
}

func sweepMode(k Kind) sweep.Mode {
	switch k {
	case KindParamSweepDelta:
		return sweep.ModeDelta
	case KindParamSweepList:
		return sweep.ModeList
	default:
		return sweep.ModeCount
	}
}

func parseCPUCount(value string, numCPU int) (int, error) {
	if strings.EqualFold(value, CPUCountAll) {
		return max(numCPU, 1), nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("unknown cpucount option %q, keeping current value", value)
	}
	if n < 1 {
		return 0, fmt.Errorf("cpucount must be at least 1, got %d", n)
	}
	return n, nil
}

// Help reports whether help was requested.
func (o Options) Help() bool { return o.help }

// HelpTopic returns the lowercased help topic, or "" for general help.
func (o Options) HelpTopic() string { return o.helpTopic }

// GenInFiles reports whether sample templates should be written.
func (o Options) GenInFiles() bool { return o.genInFiles }

// InFile returns the single template path.
func (o Options) InFile() string { return o.inFile }

// InFiles returns the independent template paths.
func (o Options) InFiles() []string { return append([]string(nil), o.inFiles...) }

// OutName returns the output base name override.
func (o Options) OutName() string { return o.outName }

// OutPath returns the base output directory.
func (o Options) OutPath() string { return o.outPath }

// CPUCount returns the requested worker count.
func (o Options) CPUCount() int { return o.cpuCount }

// Sweeps returns the sweep requests in directive order.
func (o Options) Sweeps() []SweepRequest { return append([]SweepRequest(nil), o.sweeps...) }

// InfoOnly reports whether the invocation only prints or writes reference
// material and never runs a batch.
func (o Options) InfoOnly() bool { return o.help || o.genInFiles }

// SweepMode reports whether a single template is expanded over sweeps.
// A sweep takes precedence over infiles when both are given.
func (o Options) SweepMode() bool { return len(o.sweeps) > 0 || len(o.inFiles) == 0 }
