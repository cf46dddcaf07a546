// Command asthra-safety-config generates, validates and inspects the JSON
// safety configuration consumed by the runtime.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/asthra-lang/asthra-runtime/internal/cli"
	"github.com/asthra-lang/asthra-runtime/internal/safety"
)

func main() {
	var (
		showVersion bool
		showHelp    bool
		jsonOutput  bool
		configFile  string
		initialize  bool
		validate    bool
		show        bool
		preset      string
	)

	flag.BoolVar(&showVersion, "version", false, "show version information")
	flag.BoolVar(&showHelp, "help", false, "show help information")
	flag.BoolVar(&jsonOutput, "json", false, "output in JSON format")
	flag.StringVar(&configFile, "config", "asthra-safety.json", "configuration file path")
	flag.BoolVar(&initialize, "init", false, "initialize a new configuration file")
	flag.BoolVar(&validate, "validate", false, "validate configuration file")
	flag.BoolVar(&show, "show", false, "show current configuration")
	flag.StringVar(&preset, "preset", "debug", "preset used by -init: debug, release, testing or paranoid")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Asthra runtime safety configuration manager.\n\n")
		fmt.Fprintf(os.Stderr, "OPTIONS:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEXAMPLES:\n")
		fmt.Fprintf(os.Stderr, "  %s -init                           # Write the debug preset\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -init -preset paranoid          # Write the paranoid preset\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -show                           # Show current config\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -show -json                     # Show config as JSON\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -validate                       # Validate config\n", os.Args[0])
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		cli.PrintVersion("Asthra Safety Config Manager", jsonOutput)
		os.Exit(0)
	}

	if initialize {
		if err := initConfig(configFile, preset); err != nil {
			cli.ExitWithError("Failed to initialize config: %v", err)
		}
		fmt.Printf("Configuration initialized: %s (%s preset)\n", configFile, preset)
		return
	}

	if validate {
		cfg, err := safety.LoadConfigFile(configFile)
		if err != nil {
			// Exit 2 distinguishes "config is bad" from operational failures.
			cli.ExitWithCode(2, "Configuration validation failed: %v", err)
		}
		fmt.Printf("Configuration is valid: %s (level %s)\n", configFile, cfg.Level)
		return
	}

	if show {
		cfg, err := safety.LoadConfigFile(configFile)
		if err != nil {
			cli.ExitWithError("Failed to load config: %v", err)
		}

		if jsonOutput {
			data, _ := json.MarshalIndent(cfg, "", "  ")
			fmt.Println(string(data))
		} else {
			showConfigHuman(configFile, cfg)
		}
		return
	}

	flag.Usage()
	os.Exit(1)
}

func initConfig(configFile, preset string) error {
	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("configuration file already exists: %s", configFile)
	}

	cfg, err := safety.LoadPreset(preset)
	if err != nil {
		return err
	}
	return safety.SaveConfigFile(configFile, cfg)
}

func showConfigHuman(path string, cfg safety.Config) {
	fmt.Printf("Safety configuration: %s\n", path)
	fmt.Printf("Enforcement level: %s\n\n", cfg.Level)

	fmt.Println("Checks:")
	fmt.Printf("  Bounds Checking: %t\n", cfg.BoundsChecking)
	fmt.Printf("  Type Safety Checks: %t\n", cfg.TypeSafetyChecks)
	fmt.Printf("  Ownership Tracking: %t\n", cfg.OwnershipTracking)
	fmt.Printf("  Annotation Verification: %t\n", cfg.AnnotationVerification)
	fmt.Printf("  Pattern Matching Checks: %t\n", cfg.PatternMatchingChecks)
	fmt.Printf("  String Validation: %t\n", cfg.StringValidation)
	fmt.Printf("  Memory Layout Validation: %t\n", cfg.MemoryLayoutValidation)
	fmt.Printf("  Stack Canaries: %t\n\n", cfg.StackCanaries)

	fmt.Println("Diagnostics:")
	fmt.Printf("  Concurrency Debugging: %t\n", cfg.ConcurrencyDebugging)
	fmt.Printf("  Error Handling Aids: %t\n", cfg.ErrorHandlingAids)
	fmt.Printf("  FFI Call Logging: %t\n", cfg.FFICallLogging)
	fmt.Printf("  Performance Monitoring: %t\n\n", cfg.PerformanceMonitoring)

	fmt.Println("Security:")
	fmt.Printf("  Security Enforcement: %t\n", cfg.SecurityEnforcement)
	fmt.Printf("  Constant Time Checks: %t\n", cfg.ConstantTimeChecks)
	fmt.Printf("  Secure Memory Validation: %t\n", cfg.SecureMemoryValidation)
	fmt.Printf("  Fault Injection: %t\n", cfg.FaultInjection)
}
