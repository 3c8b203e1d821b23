// IntCode CLI - loads and runs IntCode programs
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/chazu/intcode/config"
	"github.com/chazu/intcode/pkg/intcode"
	"github.com/chazu/intcode/store"

	_ "github.com/tliron/commonlog/simple"
)

const historyLimit = 10

// options holds the resolved command line.
type options struct {
	configPath string
	input      int64
	inputSet   bool
	maxSteps   int64
	trace      bool
	disasm     bool
	dump       bool
	history    bool
	noHistory  bool
	dbPath     string
	snapshot   string
	resume     string
	args       []string
}

func main() {
	var opts options
	verbose := flag.Bool("v", false, "Verbose output")
	flag.StringVar(&opts.configPath, "config", "", "Config file (default: intcode.toml found from the working directory up)")
	flag.Int64Var(&opts.input, "input", intcode.DefaultInput, "Value supplied to every input instruction")
	flag.Int64Var(&opts.maxSteps, "max-steps", 0, "Fault after this many more instructions (0 = unbounded)")
	flag.BoolVar(&opts.trace, "trace", false, "Log every instruction before it executes")
	flag.BoolVar(&opts.disasm, "disasm", false, "Print a disassembly instead of running")
	flag.BoolVar(&opts.dump, "dump", false, "Print final memory after the run")
	flag.BoolVar(&opts.history, "history", false, "List recent runs and exit")
	flag.BoolVar(&opts.noHistory, "no-history", false, "Do not record this run")
	flag.StringVar(&opts.dbPath, "db", "", "Run history database (overrides config)")
	flag.StringVar(&opts.snapshot, "snapshot", "", "Write the final engine state to this CBOR file")
	flag.StringVar(&opts.resume, "resume", "", "Resume from a CBOR snapshot instead of loading a program")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: intcode [options] [program-file | -]\n\n")
		fmt.Fprintf(os.Stderr, "Runs an IntCode program and prints its outputs, one per line.\n")
		fmt.Fprintf(os.Stderr, "Without a program argument the config's program.path is used, then the\n")
		fmt.Fprintf(os.Stderr, "program of the most recent recorded run.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  intcode day5.txt -input 1        # Run with input 1\n")
		fmt.Fprintf(os.Stderr, "  echo 3,0,4,0,99 | intcode - -input 7\n")
		fmt.Fprintf(os.Stderr, "  intcode -disasm day5.txt         # Show a listing\n")
		fmt.Fprintf(os.Stderr, "  intcode -history                 # Show recent runs\n")
	}
	flag.Parse()

	flag.Visit(func(f *flag.Flag) {
		if f.Name == "input" {
			opts.inputSet = true
		}
	})
	opts.args = flag.Args()

	verbosity := 0
	if *verbose {
		verbosity = 1
	}
	if opts.trace {
		verbosity = 2
	}
	commonlog.Configure(verbosity, nil)

	if err := run(opts, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run carries out one CLI invocation.
func run(opts options, stdin io.Reader, stdout io.Writer) error {
	log := commonlog.GetLogger("intcode")

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if cfg.Dir != "" {
		log.Infof("using config in %s", cfg.Dir)
	}

	hist, err := openHistory(opts, cfg)
	if err != nil {
		return err
	}
	if hist != nil {
		defer hist.Close()
	}

	if opts.history {
		if hist == nil {
			return errors.New("run history is disabled")
		}
		return printHistory(hist, stdout)
	}

	var (
		engine  *intcode.Engine
		program *intcode.Memory
		input   int64
	)
	if opts.resume != "" {
		if opts.inputSet {
			return errors.New("-input cannot be combined with -resume; the snapshot carries its own input")
		}
		engine, err = resumeEngine(opts.resume)
		if err != nil {
			return err
		}
		input = engine.Channel().Input()
		log.Infof("resuming %s at ip=%d after %d steps", opts.resume, engine.IP(), engine.Steps())
	} else {
		program, err = loadProgram(opts, cfg, hist, stdin)
		if err != nil {
			return err
		}
		input = intcode.DefaultInput
		if v, ok := cfg.InputValue(); ok {
			input = v
		}
		if opts.inputSet {
			input = opts.input
		}

		if opts.disasm {
			_, err := io.WriteString(stdout, intcode.Disassemble(program))
			return err
		}
		engine = intcode.NewEngine(program.Clone(), intcode.NewChannel(input))
	}

	maxSteps := cfg.Run.MaxSteps
	if opts.maxSteps > 0 {
		maxSteps = opts.maxSteps
	}
	// The limit is a budget for this invocation, counted from wherever a
	// resumed run left off.
	if maxSteps > 0 {
		engine.SetStepLimit(engine.Steps() + maxSteps)
	}
	if opts.trace || cfg.Run.Trace {
		engine.SetTracer(newLogTracer())
	}

	outputs, runErr := engine.Run()
	log.Infof("%s after %d steps", engine.State(), engine.Steps())

	if runErr == nil {
		for _, v := range outputs {
			fmt.Fprintln(stdout, v)
		}
	}
	if opts.dump {
		fmt.Fprintln(stdout, engine.Memory().String())
	}

	snapshotPath := opts.snapshot
	if snapshotPath == "" {
		snapshotPath = cfg.Resolve(cfg.Snapshot.Output)
	}
	if snapshotPath != "" {
		if err := writeSnapshot(engine, snapshotPath); err != nil {
			return err
		}
		log.Infof("wrote snapshot %s", snapshotPath)
	}

	if hist != nil && program != nil {
		r, err := hist.RecordRun(program, input, engine)
		if err != nil {
			log.Errorf("could not record run: %s", err.Error())
		} else {
			log.Infof("recorded run %s", r.ID)
		}
	}

	return runErr
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	cfg, err := config.FindAndLoad(wd)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = config.Default()
	}
	return cfg, nil
}

func openHistory(opts options, cfg *config.Config) (*store.Store, error) {
	path := cfg.Resolve(cfg.Store.Path)
	if opts.dbPath != "" {
		path = opts.dbPath
	}
	if path == "" || cfg.Store.Disabled || (opts.noHistory && !opts.history) {
		return nil, nil
	}
	return store.Open(path)
}

// loadProgram picks the program from, in order: the command line argument,
// the config file, and the most recently recorded run.
func loadProgram(opts options, cfg *config.Config, hist *store.Store, stdin io.Reader) (*intcode.Memory, error) {
	log := commonlog.GetLogger("intcode")

	if len(opts.args) > 1 {
		return nil, fmt.Errorf("expected one program, got %d", len(opts.args))
	}
	if len(opts.args) == 1 {
		if opts.args[0] == "-" {
			data, err := io.ReadAll(stdin)
			if err != nil {
				return nil, fmt.Errorf("cannot read stdin: %w", err)
			}
			return intcode.Load(string(data))
		}
		return intcode.LoadFile(opts.args[0])
	}
	if p := cfg.ProgramPath(); p != "" {
		return intcode.LoadFile(p)
	}
	if hist != nil {
		mem, err := hist.LastProgram()
		if err != nil {
			return nil, err
		}
		if mem != nil {
			log.Infof("rerunning last program (%d words)", mem.Len())
			return mem, nil
		}
	}
	return nil, errors.New("no program given (see -h)")
}

func resumeEngine(path string) (*intcode.Engine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	s, err := intcode.UnmarshalSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.Continue() {
		commonlog.GetLogger("intcode").Infof("continuing run stopped by its step limit")
	}
	return intcode.Restore(s)
}

func writeSnapshot(e *intcode.Engine, path string) error {
	data, err := intcode.MarshalSnapshot(e.Snapshot())
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	return nil
}

func printHistory(hist *store.Store, w io.Writer) error {
	runs, err := hist.Runs(historyLimit)
	if err != nil {
		return err
	}
	for _, r := range runs {
		result := intcode.Format(r.Outputs)
		if r.Fault != "" {
			result = r.Fault
		}
		fmt.Fprintf(w, "%s  %s  %s  input=%d  steps=%d  %s\n",
			r.CreatedAt.Format("2006-01-02 15:04:05"), r.ID[:8], r.State, r.Input, r.Steps,
			strings.TrimSpace(result))
	}
	return nil
}
