// main.go - entry point for the 8086/5150 emulator core.
//
// Grounded on the teacher's main.go: flag-parsed config selecting a CPU mode
// and a GUI frontend, then wiring peripherals onto a bus before starting
// execution. Retargeted from "-ie32|-m68k <program>" positional args (this
// machine has exactly one CPU) to flags naming the BIOS/BASIC/floppy images
// and which FrameConsumer to drive, per SPEC_FULL.md section 6. The
// IPC-driven floppy swap (ipc.go) and the two-loop Runtime (runtime.go)
// are both reused as-is; main.go's job is just to
// parse flags, build the Machine, and hand it to them.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
)

// Version identifies this build in the -version output (features.go).
const Version = "0.1.0"

func main() {
	var (
		biosPath    = flag.String("bios", "", "path to the 8086 BIOS ROM image (required)")
		basicPath   = flag.String("basic", "", "path to the cassette BASIC ROM image (optional)")
		basicBaseS  = flag.String("basicbase", "0xF6000", "physical load address for -basic")
		floppyPath  = flag.String("floppy", "", "path to a raw floppy A image (optional)")
		frontend    = flag.String("frontend", "terminal", "display frontend: terminal or gui")
		color       = flag.Bool("color", true, "use ANSI color in the terminal frontend")
		debug       = flag.Bool("debug", false, "attach the machine monitor (gui frontend only; terminal frontend owns stdin)")
		verbose     = flag.Bool("verbose", false, "log bus/decode/device activity at debug level")
		showVersion = flag.Bool("version", false, "print version and compiled features, then exit")
	)
	flag.Parse()

	if *showVersion {
		printFeatures()
		return
	}

	globalVerboseLogging = *verbose

	if *biosPath == "" {
		fmt.Fprintln(os.Stderr, "dk86pc: -bios is required")
		os.Exit(1)
	}

	machine := NewMachine()

	bios, err := os.ReadFile(*biosPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dk86pc: reading BIOS image: %v\n", err)
		os.Exit(1)
	}
	machine.LoadBIOS(bios)

	if *basicPath != "" {
		basicBase, err := parseHexUint32(*basicBaseS)
		if err != nil {
			fmt.Fprintf(os.Stderr, "dk86pc: invalid -basicbase: %v\n", err)
			os.Exit(1)
		}
		basic, err := os.ReadFile(*basicPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "dk86pc: reading BASIC image: %v\n", err)
			os.Exit(1)
		}
		machine.LoadBASIC(basic, basicBase)
	}

	if *floppyPath != "" {
		floppy, err := os.ReadFile(*floppyPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "dk86pc: reading floppy image: %v\n", err)
			os.Exit(1)
		}
		machine.LoadFloppyA(floppy)
	}

	machine.Reset()

	consumer, useGUI, err := selectFrontend(*frontend, machine, *color)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dk86pc: %v\n", err)
		os.Exit(1)
	}

	if tf, ok := consumer.(*TerminalFrontend); ok {
		tf.Start()
		defer tf.Stop()
	}
	if gf, ok := consumer.(*GUIFrontend); ok {
		if err := gf.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "dk86pc: starting GUI: %v\n", err)
			os.Exit(1)
		}
	}

	ipcServer, err := NewIPCServer(func(path string) error {
		image, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		machine.LoadFloppyA(image)
		return nil
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "dk86pc: ipc: %v\n", err)
	} else {
		ipcServer.Start()
		defer ipcServer.Stop()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *debug && useGUI {
		monitor := NewMachineMonitor(NewDebugCPU8086(machine))
		monitor.StartBreakpointListener()
		go monitor.RunREPL(os.Stdin, os.Stdout)
	}

	runtime := NewRuntime(machine, consumer)
	if err := runtime.Run(ctx); err != nil && err != context.Canceled {
		fmt.Fprintf(os.Stderr, "dk86pc: %v\n", err)
		os.Exit(1)
	}
}

// selectFrontend builds the FrameConsumer named by name, along with whether
// it is the GUI frontend (and therefore leaves stdin free for the monitor).
func selectFrontend(name string, machine *Machine, color bool) (FrameConsumer, bool, error) {
	switch strings.ToLower(name) {
	case "terminal", "term":
		return NewTerminalFrontend(machine, color), false, nil
	case "gui":
		return NewGUIFrontend(machine), true, nil
	default:
		return nil, false, fmt.Errorf("unknown frontend %q (want terminal or gui)", name)
	}
}

// parseHexUint32 parses a hex literal with an optional "0x" prefix.
func parseHexUint32(s string) (uint32, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	s = strings.TrimPrefix(s, "0X")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}
