// Command asthra-ffi-debug runs a standalone runtime instance and serves
// its debug endpoints over HTTP, and optionally HTTP/3, until interrupted.
// It exists so the memory and safety state of an embedding can be inspected
// with nothing but curl.
package main

import (
	"context"
	"crypto/tls"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/asthra-lang/asthra-runtime/internal/cli"
	"github.com/asthra-lang/asthra-runtime/internal/diag"
	rt "github.com/asthra-lang/asthra-runtime/internal/runtime"
)

func main() {
	var (
		addr        string
		metricsAddr string
		http3Addr   string
		certFile    string
		keyFile     string
		preset      string
		configFile  string
		verbose     bool
		showVersion bool
		jsonOutput  bool
	)
	flag.StringVar(&addr, "addr", ":8080", "listen address for the debug HTTP endpoints")
	flag.StringVar(&metricsAddr, "metrics", "", "optional address for a metrics-only endpoint (e.g. :9090)")
	flag.StringVar(&http3Addr, "http3", "", "optional UDP address to mirror the endpoints over HTTP/3 (e.g. :8443)")
	flag.StringVar(&certFile, "cert", "", "TLS certificate file for HTTP/3 (self-signed when empty)")
	flag.StringVar(&keyFile, "key", "", "TLS key file for HTTP/3")
	flag.StringVar(&preset, "preset", "", "safety preset: debug, release, testing or paranoid")
	flag.StringVar(&configFile, "config", "", "safety configuration JSON file (watched for changes)")
	flag.BoolVar(&verbose, "verbose", false, "log per-call FFI traffic and allocator churn")
	flag.BoolVar(&showVersion, "version", false, "show version information")
	flag.BoolVar(&jsonOutput, "json", false, "output version in JSON format")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Asthra runtime debug server.\n\n")
		fmt.Fprintf(os.Stderr, "OPTIONS:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEXAMPLES:\n")
		fmt.Fprintf(os.Stderr, "  %s -addr :8080                     # Serve debug endpoints\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -preset paranoid                # Run with every check enabled\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -config safety.json             # Load and watch a config file\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -addr :8080 -http3 :8443        # Mirror endpoints over HTTP/3\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -metrics :9090                  # Separate metrics-only endpoint\n", os.Args[0])
	}

	flag.Parse()

	if showVersion {
		cli.PrintVersion("Asthra FFI Debug Server", jsonOutput)
		os.Exit(0)
	}

	if verbose {
		diag.SetMinLevel(diag.LevelDebug)
	}

	opts := []rt.Option{}
	if preset != "" {
		opts = append(opts, rt.WithSafetyPreset(preset))
	}
	if configFile != "" {
		opts = append(opts, rt.WithConfigFile(configFile))
	}

	sys, err := rt.Init(opts...)
	if err != nil {
		cli.ExitWithError("runtime init failed: %v", err)
	}

	shutdownHTTP, bound, err := rt.StartDebugHTTPOn(sys, addr)
	if err != nil {
		cli.ExitWithError("listen failed: %v", err)
	}
	fmt.Println("debug HTTP listening on http://" + bound)

	var shutdownMetrics func(ctx context.Context) error
	if metricsAddr != "" {
		boundM, stopM, err := rt.StartMetricsServer(metricsAddr, rt.SystemCollectors(sys))
		if err != nil {
			cli.ExitWithError("metrics listen failed: %v", err)
		}
		shutdownMetrics = stopM
		fmt.Println("metrics listening on http://" + boundM + "/metrics")
	}

	var stopHTTP3 func() error
	if http3Addr != "" {
		var tlsCfg *tls.Config
		if certFile != "" && keyFile != "" {
			tlsCfg, err = rt.LoadTLSConfig(certFile, keyFile)
			if err != nil {
				cli.ExitWithError("http3 tls: %v", err)
			}
		}
		stop, bound3, err := rt.StartDebugHTTP3(sys, http3Addr, tlsCfg)
		if err != nil {
			cli.ExitWithError("http3 listen failed: %v", err)
		}
		stopHTTP3 = stop
		fmt.Println("debug HTTP/3 listening on https://" + bound3 + " (udp)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	_ = shutdownHTTP(context.Background())
	if shutdownMetrics != nil {
		_ = shutdownMetrics(context.Background())
	}
	if stopHTTP3 != nil {
		_ = stopHTTP3()
	}
	sys.Shutdown()
	fmt.Println("debug server stopped")
}
