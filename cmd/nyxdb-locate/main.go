package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"go.uber.org/zap"

	configpkg "nyxdb-client/internal/config"
	"nyxdb-client/internal/locator"
	locgrpc "nyxdb-client/internal/locator/grpc"
	"nyxdb-client/internal/observability/metrics"
	"nyxdb-client/internal/observability/tracing"
	"nyxdb-client/internal/region"
	"nyxdb-client/internal/registry"
)

func main() {
	configPath := flag.String("config", "", "client config file (yaml)")
	table := flag.String("table", "", "table name, optionally namespace:qualifier")
	key := flag.String("key", "", "row key to locate")
	dirName := flag.String("dir", "current", "locate direction: current, before or after")
	allReplicas := flag.Bool("replicas", false, "print every replica slot, not just the primary")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	if *table == "" {
		log.Fatalf("missing -table")
	}

	cfg := &configpkg.ClientConfig{}
	if *configPath != "" {
		loaded, err := configpkg.LoadClientConfig(*configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		cfg = loaded
	}

	logger := zap.NewNop()
	if *verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			log.Fatalf("logger: %v", err)
		}
		logger = l
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.Setup(ctx, cfg.TracingConfig())
	if err != nil {
		log.Fatalf("tracing: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(shutdownCtx)
	}()

	var collector *metrics.LocatorCollector
	if cfg.Metrics.Address != "" {
		collector = metrics.NewLocatorCollector(nil, cfg.Metrics.Namespace)
		if err := metrics.StartServer(ctx, cfg.Metrics.Address); err != nil {
			log.Fatalf("metrics: %v", err)
		}
	}

	reg, err := buildRegistry(cfg)
	if err != nil {
		log.Fatalf("registry: %v", err)
	}
	defer reg.Close()

	client := locgrpc.NewClient()
	defer client.Close()

	lookupTimeout, err := cfg.LookupTimeout()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	fetchTimeout, err := cfg.FetchTimeout()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	loc := locator.NewRegionLocator(client, reg, locator.Options{
		Logger:       logger,
		Metrics:      collector,
		FetchTimeout: fetchTimeout,
	})

	dir, err := parseDirection(*dirName)
	if err != nil {
		log.Fatalf("%v", err)
	}
	tbl := region.ParseTableName(*table)
	row := []byte(*key)

	if *allReplicas {
		locs, err := loc.GetRegionLocations(ctx, tbl, row, dir, true, lookupTimeout)
		if err != nil {
			log.Fatalf("locate: %v", err)
		}
		for i, l := range locs.All() {
			if l == nil {
				fmt.Printf("replica %d: <unresolved>\n", i)
				continue
			}
			fmt.Printf("replica %d: %s -> %s\n", i, l.Region.Name(), l.Server.Addr())
		}
		return
	}

	l, err := loc.GetRegionLocation(ctx, tbl, row, dir, lookupTimeout)
	if err != nil {
		log.Fatalf("locate: %v", err)
	}
	fmt.Printf("%s -> %s\n", l.Region.Name(), l.Server.Addr())
}

func buildRegistry(cfg *configpkg.ClientConfig) (registry.CoordinatorRegistry, error) {
	if len(cfg.Registry.Endpoints) > 0 {
		etcdCfg, err := cfg.EtcdConfig()
		if err != nil {
			return nil, err
		}
		return registry.NewEtcdRegistry(etcdCfg)
	}
	if len(cfg.Coordinator.Addresses) > 0 {
		return registry.NewRPCRegistry(cfg.Coordinator.Addresses)
	}
	return nil, fmt.Errorf("no registry endpoints or coordinator addresses configured")
}

func parseDirection(name string) (locator.Direction, error) {
	switch strings.ToLower(name) {
	case "current":
		return locator.Current, nil
	case "before":
		return locator.Before, nil
	case "after":
		return locator.After, nil
	default:
		return 0, fmt.Errorf("unknown direction %q", name)
	}
}
