package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	accepter "github.com/orkunkaraduman/go-accepter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/simult/proxyd/pkg/forward"
	"github.com/simult/proxyd/pkg/version"
)

func main() {
	var (
		listenAddr  string
		metricsAddr string
		optionsFile string
		showVersion bool
	)
	flag.StringVar(&listenAddr, "listen", ":8080", "proxy listen address")
	flag.StringVar(&metricsAddr, "metrics", ":9090", "prometheus metrics listen address")
	flag.StringVar(&optionsFile, "options", "", "engine options YAML file (optional)")
	flag.BoolVar(&showVersion, "version", false, "print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("proxyd %s (%s)\n", version.Version(), version.Build())
		return
	}

	errorLogger := log.New(os.Stderr, "ERROR ", log.LstdFlags)
	infoLogger := log.New(os.Stdout, "INFO ", log.LstdFlags)
	debugLogger := log.New(os.Stdout, "DEBUG ", log.LstdFlags)

	opts := forward.DefaultOptions()
	if optionsFile != "" {
		loaded, err := forward.LoadOptionsFromFile(optionsFile)
		if err != nil {
			errorLogger.Fatalf("loading options from %q: %v", optionsFile, err)
		}
		opts = loaded
	}

	reg := prometheus.NewRegistry()
	metrics := forward.NewMetrics("proxyd", reg)
	engine := forward.NewEngine(opts, metrics)

	fwdLogger := &forward.StdLogger{
		ErrorLogger: errorLogger,
		InfoLogger:  infoLogger,
		DebugLogger: debugLogger,
	}

	lis, err := net.Listen("tcp", listenAddr)
	if err != nil {
		errorLogger.Fatalf("listen on %q: %v", listenAddr, err)
	}

	accr := &accepter.Accepter{
		Handler: &proxyHandler{engine: engine, log: fwdLogger},
	}

	go func() {
		if err := accr.Serve(lis); err != nil {
			errorLogger.Printf("accepter serve error: %v", err)
		}
	}()
	infoLogger.Printf("proxying on %s", listenAddr)

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		if err := http.ListenAndServe(metricsAddr, mux); err != nil {
			errorLogger.Printf("metrics server error: %v", err)
		}
	}()
	infoLogger.Printf("metrics on %s", metricsAddr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	accr.Close()
}
