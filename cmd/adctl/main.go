// Command adctl inspects and mutates ad-network campaign state through
// the contract gateway: ledger-backed when a contract address is
// configured, local-store-only otherwise.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"massa-adnet/internal/config"
	"massa-adnet/internal/domain"
	"massa-adnet/internal/gateway"
	"massa-adnet/internal/massa"
	"massa-adnet/internal/observability"
	"massa-adnet/internal/storage"
	chstore "massa-adnet/internal/storage/clickhouse"
	"massa-adnet/internal/storage/memory"
	pgstore "massa-adnet/internal/storage/postgres"
	redisstore "massa-adnet/internal/storage/redis"
	"massa-adnet/internal/units"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fatal("load config: %v", err)
	}

	logger := log.New(os.Stderr, "adctl ", log.LstdFlags)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr, logger)
	}

	store, cleanup, err := buildStore(ctx, cfg)
	if err != nil {
		fatal("build store: %v", err)
	}
	defer cleanup()

	gw, err := buildGateway(cfg, store, logger)
	if err != nil {
		fatal("build gateway: %v", err)
	}

	cmd, argv := os.Args[1], os.Args[2:]
	if err := run(ctx, cmd, argv, cfg, gw, logger); err != nil {
		fatal("%s: %v", cmd, err)
	}
}

func run(ctx context.Context, cmd string, argv []string, cfg *config.Config, gw *gateway.Gateway, logger *log.Logger) error {
	switch cmd {
	case "list":
		return cmdList(ctx, argv, gw)
	case "get":
		return cmdGet(ctx, argv, gw)
	case "create":
		return cmdCreate(ctx, argv, gw)
	case "set-status":
		return cmdSetStatus(ctx, argv, gw)
	case "update":
		return cmdUpdate(ctx, argv, gw)
	case "delete":
		return cmdDelete(ctx, argv, gw)
	case "register-hoster":
		return cmdRegisterHoster(ctx, argv, gw)
	case "register-developer":
		return cmdRegisterDeveloper(ctx, argv, gw)
	case "claim":
		_, err := gw.ClaimDeveloperEarnings(ctx)
		return err
	case "payouts":
		return cmdPayouts(ctx, argv, gw)
	case "impression", "click":
		return cmdRecord(ctx, cmd, argv, cfg, gw)
	case "stats":
		return cmdStats(ctx, gw)
	case "hoster":
		return cmdHoster(ctx, argv, gw)
	case "developer":
		return cmdDeveloper(ctx, argv, gw)
	case "watch":
		return cmdWatch(ctx, cfg, logger)
	case "help":
		usage()
		return nil
	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: adctl <command> [flags]

commands:
  list               list campaigns (-status, -category)
  get                fetch one campaign (-id)
  create             create a campaign (-owner -title -desc -category -url -creative -pricing -rate -budget)
  set-status         move a campaign through its lifecycle (-id -status)
  update             edit campaign details (-id -title -desc -category -url -creative -pricing -rate)
  delete             delete a campaign on the ledger (-id)
  register-hoster    register the wallet as a hoster (-name -business -categories)
  register-developer register the wallet as a developer (-name -website -categories)
  claim              claim pending developer earnings
  payouts            trigger one scheduled payout batch (-batch)
  impression, click  record a delivery event (-id)
  stats              platform-wide counters
  hoster, developer  profile lookup (-address)
  watch              stream local change notifications`)
}

func buildStore(ctx context.Context, cfg *config.Config) (storage.CampaignStore, func(), error) {
	hub := storage.NewHub()
	switch cfg.StoreBackend {
	case "memory":
		return memory.NewCampaignStore(hub), func() {}, nil
	case "redis":
		client := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		st := redisstore.NewCampaignStore(client, redisstore.WithPublisher(hub))
		return st, func() { client.Close() }, nil
	case "postgres":
		pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		return pgstore.NewCampaignStore(pool, hub), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func buildGateway(cfg *config.Config, store storage.CampaignStore, logger *log.Logger) (*gateway.Gateway, error) {
	opts := []gateway.Option{
		gateway.WithLogger(logger),
		gateway.WithFees(units.ToBaseUnits(cfg.DefaultFee), units.ToBaseUnits(cfg.CreateFee)),
		gateway.WithMaxGas(cfg.MaxGas),
		gateway.WithListLimit(cfg.ListLimit),
		gateway.WithPayoutBatch(cfg.PayoutBatch),
		gateway.WithSimulatedLatency(cfg.SimulatedLatency),
	}

	if cfg.Configured() {
		if !massa.CheckAddress(cfg.ContractAddress) {
			return nil, fmt.Errorf("malformed contract address %q", cfg.ContractAddress)
		}

		clientOpts := []massa.ClientOption{}
		if cfg.WalletSecret != "" {
			wallet, err := massa.NewWalletFromSecret(cfg.WalletSecret)
			if err != nil {
				return nil, fmt.Errorf("load wallet: %w", err)
			}
			clientOpts = append(clientOpts, massa.WithWallet(wallet))
		}

		client := massa.NewHTTPClient(cfg.RPCURL, cfg.ContractAddress, clientOpts...)
		opts = append(opts, gateway.WithLedger(client))
		if cfg.WalletSecret != "" {
			opts = append(opts, gateway.WithCaller(client))
		}
	}

	return gateway.New(store, opts...), nil
}

func cmdList(ctx context.Context, argv []string, gw *gateway.Gateway) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	status := fs.String("status", "", "filter by lifecycle status")
	category := fs.String("category", "", "filter by category")
	fs.Parse(argv)

	campaigns, err := gw.FetchCampaigns(ctx, domain.CampaignFilters{
		Status:   domain.CampaignStatus(*status),
		Category: domain.Category(*category),
	})
	if err != nil {
		return err
	}
	return printJSON(campaigns)
}

func cmdGet(ctx context.Context, argv []string, gw *gateway.Gateway) error {
	fs := flag.NewFlagSet("get", flag.ExitOnError)
	id := fs.Uint64("id", 0, "campaign identifier")
	fs.Parse(argv)

	c, err := gw.FetchCampaignByID(ctx, *id)
	if err != nil {
		return err
	}
	if c.Title == "" {
		fmt.Fprintf(os.Stderr, "campaign %d not found, showing placeholder\n", *id)
	}
	return printJSON(c)
}

func cmdCreate(ctx context.Context, argv []string, gw *gateway.Gateway) error {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	owner := fs.String("owner", "", "owning address (local mode only)")
	title := fs.String("title", "", "campaign title")
	desc := fs.String("desc", "", "description")
	category := fs.String("category", string(domain.DefaultCategory), "category")
	target := fs.String("url", "", "target URL")
	creative := fs.String("creative", "", "creative reference")
	pricing := fs.String("pricing", string(domain.PricingPerClick), "pricing model: cpc or cpm")
	rate := fs.Float64("rate", 0, "rate in display units")
	budget := fs.Float64("budget", 0, "budget in display units")
	fs.Parse(argv)

	c, opID, err := gw.CreateCampaign(ctx, *owner, domain.CreateCampaignInput{
		Title:        *title,
		Description:  *desc,
		Category:     domain.Category(*category),
		TargetURL:    *target,
		CreativeRef:  *creative,
		PricingModel: domain.PricingModel(*pricing),
		Rate:         *rate,
		Budget:       *budget,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, gateway.Hint(err))
		return err
	}
	if opID != "" {
		fmt.Println(opID)
		return nil
	}
	return printJSON(c)
}

func cmdSetStatus(ctx context.Context, argv []string, gw *gateway.Gateway) error {
	fs := flag.NewFlagSet("set-status", flag.ExitOnError)
	id := fs.Uint64("id", 0, "campaign identifier")
	status := fs.String("status", "", "active, paused or stopped")
	fs.Parse(argv)

	if !domain.CampaignStatus(*status).IsValid() {
		return fmt.Errorf("invalid status %q", *status)
	}
	opID, err := gw.UpdateCampaignStatus(ctx, *id, domain.CampaignStatus(*status))
	if err != nil {
		fmt.Fprintln(os.Stderr, gateway.Hint(err))
		return err
	}
	if opID != "" {
		fmt.Println(opID)
	}
	return nil
}

func cmdUpdate(ctx context.Context, argv []string, gw *gateway.Gateway) error {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	id := fs.Uint64("id", 0, "campaign identifier")
	title := fs.String("title", "", "campaign title")
	desc := fs.String("desc", "", "description")
	category := fs.String("category", "", "category")
	target := fs.String("url", "", "target URL")
	creative := fs.String("creative", "", "creative reference")
	pricing := fs.String("pricing", "", "pricing model: cpc or cpm")
	rate := fs.Float64("rate", 0, "rate in display units")
	fs.Parse(argv)

	opID, err := gw.UpdateCampaignDetails(ctx, *id, domain.UpdateCampaignDetailsInput{
		Title:        *title,
		Description:  *desc,
		Category:     domain.Category(*category),
		TargetURL:    *target,
		CreativeRef:  *creative,
		PricingModel: domain.PricingModel(*pricing),
		Rate:         *rate,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, gateway.Hint(err))
		return err
	}
	if opID != "" {
		fmt.Println(opID)
	}
	return nil
}

func cmdDelete(ctx context.Context, argv []string, gw *gateway.Gateway) error {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	id := fs.Uint64("id", 0, "campaign identifier")
	fs.Parse(argv)

	opID, err := gw.DeleteCampaign(ctx, *id)
	if err != nil {
		return err
	}
	if opID != "" {
		fmt.Println(opID)
	}
	return nil
}

func cmdRegisterHoster(ctx context.Context, argv []string, gw *gateway.Gateway) error {
	fs := flag.NewFlagSet("register-hoster", flag.ExitOnError)
	name := fs.String("name", "", "display name")
	business := fs.String("business", "", "business name")
	categories := fs.String("categories", "", "pipe-separated categories")
	fs.Parse(argv)

	opID, err := gw.RegisterHoster(ctx, domain.RegisterHosterInput{
		Name:         *name,
		BusinessName: *business,
		Categories:   domain.SplitTags(*categories),
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, gateway.Hint(err))
		return err
	}
	if opID != "" {
		fmt.Println(opID)
	}
	return nil
}

func cmdRegisterDeveloper(ctx context.Context, argv []string, gw *gateway.Gateway) error {
	fs := flag.NewFlagSet("register-developer", flag.ExitOnError)
	name := fs.String("name", "", "display name")
	website := fs.String("website", "", "website URL")
	categories := fs.String("categories", "", "pipe-separated categories")
	fs.Parse(argv)

	opID, err := gw.RegisterDeveloper(ctx, domain.RegisterDeveloperInput{
		Name:       *name,
		Website:    *website,
		Categories: domain.SplitTags(*categories),
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, gateway.Hint(err))
		return err
	}
	if opID != "" {
		fmt.Println(opID)
	}
	return nil
}

func cmdPayouts(ctx context.Context, argv []string, gw *gateway.Gateway) error {
	fs := flag.NewFlagSet("payouts", flag.ExitOnError)
	batch := fs.Uint("batch", 0, "batch size, 0 for default")
	fs.Parse(argv)

	opID, err := gw.TriggerScheduledPayouts(ctx, uint32(*batch))
	if err != nil {
		return err
	}
	if opID != "" {
		fmt.Println(opID)
	}
	return nil
}

var recordGuard = gateway.NewDebouncer(gateway.DefaultDebounceWindow)

func cmdRecord(ctx context.Context, kind string, argv []string, cfg *config.Config, gw *gateway.Gateway) error {
	fs := flag.NewFlagSet(kind, flag.ExitOnError)
	id := fs.Uint64("id", 0, "campaign identifier")
	viewer := fs.String("viewer", "", "viewer address, optional")
	fs.Parse(argv)

	if !recordGuard.Allow(kind, *id) {
		observability.RecordDebounced()
		return nil
	}

	var err error
	if kind == "impression" {
		err = gw.RecordImpression(ctx, *id)
	} else {
		err = gw.RecordClick(ctx, *id)
	}
	if err != nil {
		return err
	}

	// Analytics sink is best effort; a missing warehouse never blocks
	// delivery accounting.
	if cfg.ClickhouseDSN != "" {
		if chErr := recordAdEvent(ctx, cfg.ClickhouseDSN, kind, *id, *viewer); chErr != nil {
			return fmt.Errorf("record %s event: %w", kind, chErr)
		}
	}
	return nil
}

func recordAdEvent(ctx context.Context, dsn, kind string, campaignID uint64, viewer string) error {
	conn, err := chstore.NewConn(ctx, dsn)
	if err != nil {
		return err
	}
	defer conn.Close()

	eventType := domain.AdEventImpression
	if kind == "click" {
		eventType = domain.AdEventClick
	}
	store := chstore.NewAdEventStore(conn)
	return store.Record(ctx, domain.AdEvent{
		CampaignID: campaignID,
		Type:       eventType,
		Viewer:     viewer,
		OccurredAt: time.Now().UnixMilli(),
	})
}

func cmdStats(ctx context.Context, gw *gateway.Gateway) error {
	s, err := gw.FetchPlatformStats(ctx)
	if err != nil {
		return err
	}
	return printJSON(s)
}

func cmdHoster(ctx context.Context, argv []string, gw *gateway.Gateway) error {
	fs := flag.NewFlagSet("hoster", flag.ExitOnError)
	address := fs.String("address", "", "hoster address")
	fs.Parse(argv)

	p, err := gw.FetchHosterProfile(ctx, *address)
	if err != nil {
		return err
	}
	return printJSON(p)
}

func cmdDeveloper(ctx context.Context, argv []string, gw *gateway.Gateway) error {
	fs := flag.NewFlagSet("developer", flag.ExitOnError)
	address := fs.String("address", "", "developer address")
	fs.Parse(argv)

	p, err := gw.FetchDeveloperProfile(ctx, *address)
	if err != nil {
		return err
	}
	return printJSON(p)
}

// cmdWatch streams change notifications: the in-process hub plus, for
// the redis backend, the cross-context listener; with a WS URL set it
// additionally bridges on-chain contract events into the same stream.
func cmdWatch(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	hub := storage.NewHub()

	if cfg.StoreBackend == "redis" {
		client := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		defer client.Close()
		listener := redisstore.NewListener(ctx, client, hub, redisstore.DefaultSignalKey)
		defer listener.Close()
	}

	if cfg.WSURL != "" && cfg.Configured() {
		ws, err := massa.NewWSClient(ctx, cfg.WSURL, nil)
		if err != nil {
			return fmt.Errorf("connect ws: %w", err)
		}
		defer ws.Close()

		bridge := gateway.NewEventBridge(ws, hub, cfg.ContractAddress, logger)
		if err := bridge.Start(ctx); err != nil {
			return fmt.Errorf("start event bridge: %w", err)
		}
		defer bridge.Stop()
	}

	events, unsubscribe := hub.Subscribe()
	defer unsubscribe()

	logger.Printf("watching for campaign changes")
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			fmt.Printf("%s campaign=%d\n", time.UnixMilli(ev.Timestamp).Format(time.RFC3339), ev.CampaignID)
		}
	}
}

func serveMetrics(addr string, logger *log.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Printf("metrics listener: %v", err)
	}
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func fatal(format string, v ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", v...)
	os.Exit(1)
}
