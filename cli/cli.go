package cli

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
)

// Config holds all the command-line flag values.
type Config struct {
	Nvim        bool
	Current     bool
	Server      string
	Register    string
	Print       bool
	NoAnimation bool
	Verbose     bool
	LookupDirs  []string
	Paths       []string
}

// ParseFlags defines and parses command-line flags using pflag.
func ParseFlags() (*Config, error) {
	return parseArgs(pflag.CommandLine, os.Args[1:])
}

func parseArgs(flags *pflag.FlagSet, args []string) (*Config, error) {
	cfg := &Config{}

	// Define flags
	flags.StringSliceVarP(&cfg.LookupDirs, "lookup-dir", "l", []string{}, "Directories to resolve relative paths against (default: current directory).")
	flags.BoolVarP(&cfg.Print, "print", "p", false, "Print the result to stdout instead of copying it.")
	flags.BoolVar(&cfg.NoAnimation, "no-animation", false, "Disable loading spinner and progress updates.")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Log debug details to stderr.")

	// Neovim host
	flags.BoolVarP(&cfg.Nvim, "nvim", "n", false, "Copy the listed buffers of the running Neovim instead of paths.")
	flags.BoolVarP(&cfg.Current, "current", "c", false, "With --nvim, copy only the current buffer.")
	flags.StringVar(&cfg.Server, "server", "", "Neovim server address (default: $NVIM, then $NVIM_LISTEN_ADDRESS).")
	flags.StringVarP(&cfg.Register, "register", "r", "", "With --nvim, write into this Neovim register instead of the system clipboard.")

	flags.Usage = func() {
		fmt.Println("Usage: itc [flags] [paths...]")
		fmt.Println("\nCopy files into the clipboard, each wrapped in a <file path=\"...\"> block.")
		fmt.Println("Paths come from arguments, from stdin (a list or a markdown answer), or from Neovim.")
		fmt.Println("\nExample: git diff --name-only | itc")
		fmt.Println("\nFlags:")
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	cfg.Paths = flags.Args()

	if !cfg.Nvim {
		if cfg.Current {
			return nil, fmt.Errorf("error: --current requires --nvim")
		}
		if cfg.Register != "" {
			return nil, fmt.Errorf("error: --register requires --nvim")
		}
	}
	if cfg.Nvim && len(cfg.Paths) > 0 {
		return nil, fmt.Errorf("error: --nvim takes the selection from Neovim, not from arguments")
	}
	if cfg.Print && cfg.Register != "" {
		return nil, fmt.Errorf("error: --print and --register are mutually exclusive")
	}
	if len(cfg.Register) > 1 {
		return nil, fmt.Errorf("error: --register takes a single register name, got %q", cfg.Register)
	}

	return cfg, nil
}
