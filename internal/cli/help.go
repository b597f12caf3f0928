package cli

import (
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/virtualphotonics/mcbatch/internal/config"
	"github.com/virtualphotonics/mcbatch/internal/directive"
	"github.com/virtualphotonics/mcbatch/internal/simulation"
)

// Help layout widths.
const (
	widthDirective = 46
	widthParam     = 6
	widthEnvVar    = 15
)

type helpTopic struct {
	summary  string
	text     []string
	format   string
	examples []string
}

var helpTopics = map[directive.Kind]helpTopic{
	directive.KindInFile: {
		summary: "input template, relative or absolute path",
		text: []string{
			"The simulation input template to expand and run. Relative paths are",
			"resolved against the working directory. Quote paths that contain spaces.",
		},
		format:   "infile=<path>",
		examples: []string{"infile=myinfile.yaml", `infile="Input Files/myinfile.yaml"`, "infile=/data/mc/myinfile.yaml"},
	},
	directive.KindInFiles: {
		summary: "several independent templates, run without sweeps",
		text: []string{
			"Runs each template once under its own output name. All templates are",
			"validated before the first run starts; outname does not apply.",
		},
		format:   "infiles=<path1>,<path2>,...",
		examples: []string{"infiles=a.yaml,b.yaml"},
	},
	directive.KindOutPath: {
		summary: "directory that receives the run folders",
		text: []string{
			"Parent directory of every run's output folder, relative or absolute.",
			"Defaults to the working directory.",
		},
		format:   "outpath=<path>",
		examples: []string{"outpath=results", "outpath=/scratch/mc"},
	},
	directive.KindOutName: {
		summary: "replaces the template's output name",
		text: []string{
			"Replaces the base output name of the template. Sweep suffixes are",
			"still appended, e.g. outname=mcResults gives mcResults_mua1_0.01.",
		},
		format:   "outname=<name>",
		examples: []string{"outname=mcResults"},
	},
	directive.KindCPUCount: {
		summary: "number of concurrent runs, default 1",
		text: []string{
			"Number of simulations run at the same time; all uses every CPU.",
			"Batches that write databases always run one simulation at a time.",
		},
		format:   "cpucount=<n>|all",
		examples: []string{"cpucount=4", "cpucount=all"},
	},
	directive.KindParamSweep: {
		summary: "sweep by count of evenly spaced values",
		text:    []string{"Samples count values from start to stop inclusive."},
		format:  "paramsweep=<param>,<start>,<stop>,<count>",
		examples: []string{
			"paramsweep=mua1,0.01,0.04,4",
			"paramsweep=mus1,10,20,2",
		},
	},
	directive.KindParamSweepDelta: {
		summary: "sweep by fixed step",
		text:    []string{"Steps from start by delta while the value does not pass stop."},
		format:  "paramsweepdelta=<param>,<start>,<stop>,<delta>",
		examples: []string{
			"paramsweepdelta=mua1,0.01,0.04,0.01",
			"paramsweepdelta=mus1,10,20,5",
		},
	},
	directive.KindParamSweepList: {
		summary: "sweep over literal values",
		text:    []string{"Uses exactly the listed values; the count must match the list."},
		format:  "paramsweeplist=<param>,<count>,<v1>,<v2>,...",
		examples: []string{
			"paramsweeplist=mua1,3,0.01,0.03,0.04",
			"paramsweeplist=mus1,5,0.01,1,10,100,1000",
		},
	},
}

func (a *app) printBanner() {
	a.out.HelpTitle(fmt.Sprintf("Virtual Photonics MC %s", Version))
	a.out.Println("For more information type mc help")
	a.out.Println("For help on a specific topic type mc help=<topicname>")
}

// printHelp prints general help, or the help of topic when it names a
// directive with a topic. Unknown topics fall back to general help.
func (a *app) printHelp(topic string) {
	if topic != "" {
		if k, ok := directive.LookupKind(topic); ok {
			if t, ok := helpTopics[k]; ok {
				a.printTopic(k, t)
				return
			}
		}
	}
	a.printGeneralHelp()
}

func (a *app) printTopic(k directive.Kind, t helpTopic) {
	upper := cases.Upper(language.English)
	a.out.HelpTitle(upper.String(k.String()))
	for _, line := range t.text {
		a.out.HelpText(line)
	}
	if k == directive.KindCPUCount {
		a.out.HelpText(fmt.Sprintf("CPUs on this computer: %d", a.numCPU))
	}
	a.out.HelpSection("Format:")
	a.out.HelpUsage(t.format)
	a.out.HelpSection("Examples:")
	for _, ex := range t.examples {
		a.out.HelpExample(ex, "")
	}
	a.out.Println("")
}

func (a *app) printGeneralHelp() {
	a.out.HelpTitle(fmt.Sprintf("Virtual Photonics MC %s", Version))

	a.out.HelpSection("Usage:")
	a.out.HelpUsage("mc infile=<path> [directive ...]")
	a.out.HelpUsage("mc help=<topic>")

	a.out.HelpSection("Directives:")
	for _, k := range directive.Kinds() {
		switch k {
		case directive.KindHelp:
			a.out.HelpCommand("help[=<topic>]", "general help, or help on one directive", widthDirective)
		case directive.KindGenInFiles:
			a.out.HelpCommand("geninfiles", "writes sample templates as infile_<name>.yaml", widthDirective)
		default:
			t := helpTopics[k]
			a.out.HelpCommand(t.format, t.summary, widthDirective)
		}
	}

	a.out.HelpSection("Sweep parameters:")
	for i := 1; i <= 2; i++ {
		a.out.HelpCommand(fmt.Sprintf("mua%d", i), fmt.Sprintf("absorption coefficient for tissue layer %d", i), widthParam)
		a.out.HelpCommand(fmt.Sprintf("mus%d", i), fmt.Sprintf("scattering coefficient for tissue layer %d", i), widthParam)
		a.out.HelpCommand(fmt.Sprintf("n%d", i), fmt.Sprintf("refractive index for tissue layer %d", i), widthParam)
		a.out.HelpCommand(fmt.Sprintf("g%d", i), fmt.Sprintf("anisotropy for tissue layer %d", i), widthParam)
	}
	for _, p := range simulation.SweepParameters {
		a.out.HelpCommand(p.Name, p.Description, widthParam)
	}

	a.out.HelpSection("Environment:")
	a.out.HelpEnvVar(config.EnvEngine, "engine command; the input file and run directory are appended", widthEnvVar)
	a.out.HelpEnvVar(config.EnvLogLevel, "trace, debug, info, warn or error", widthEnvVar)
	a.out.HelpEnvVar(config.EnvLedger, "SQLite file that records batches and runs", widthEnvVar)
	a.out.HelpEnvVar(config.EnvMaxWorkers, "upper bound for cpucount", widthEnvVar)
	a.out.HelpEnvVar(config.EnvColor, "auto, always or never", widthEnvVar)
	a.out.HelpEnvVar(config.EnvQuiet, "true hides progress lines", widthEnvVar)

	a.out.HelpSection("Examples:")
	a.out.HelpExample("mc geninfiles", "write the sample templates")
	a.out.HelpExample(
		"mc infile=myinput.yaml outname=myoutput paramsweep=mua1,0.01,0.04,4 paramsweep=mus1,10,20,2 cpucount=all",
		"eight runs named myoutput_mua1_<v>_mus1_<v>",
	)
	a.out.Println("")
}
