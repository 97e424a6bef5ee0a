package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"tableside/internal/api"
	"tableside/internal/config"
	"tableside/internal/logger"
	"tableside/internal/models"
	"tableside/internal/services/cart"
	"tableside/internal/services/checkout"
	"tableside/internal/services/coupon"
	"tableside/internal/services/pricing"
	"tableside/internal/services/session"
	"tableside/internal/services/tracking"
	"tableside/internal/storage"
)

func main() {
	var (
		configPath = flag.String("config", "config.yaml", "Path to config file")
		code       = flag.String("code", "", "Scanned or typed table code")
		watchOrder = flag.String("watch", "", "Order id to track instead of starting an ordering session")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New("tableside")
	requestID := logger.GenerateRequestID()

	// Set up graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info("graceful_shutdown", "Received shutdown signal", requestID, nil)
		cancel()
	}()

	client := api.New(cfg.API.BaseURL, cfg.Timeout(), log)

	if *watchOrder != "" {
		if err := trackAndPrint(ctx, client, log, cfg, *watchOrder); err != nil {
			log.Error("watch_failed", "Order watch failed", requestID, err, nil)
			os.Exit(1)
		}
		return
	}

	if *code == "" {
		fmt.Fprintf(os.Stderr, "Error: --code flag is required (scan the table code)\n")
		flag.Usage()
		os.Exit(1)
	}

	store, err := openStorage(cfg, log)
	if err != nil {
		log.Error("storage_failed", "Failed to open cart storage", requestID, err, nil)
		os.Exit(1)
	}
	defer store.Close()

	if err := runOrderFlow(ctx, client, store, log, cfg, *code); err != nil {
		log.Error("session_failed", "Ordering session failed", requestID, err, nil)
		os.Exit(1)
	}
}

// openStorage builds the cart persistence adapter selected in config.
func openStorage(cfg *config.Config, log *logger.Logger) (storage.Adapter, error) {
	switch cfg.Storage.Backend {
	case "memory":
		return storage.NewMemory(), nil
	case "file":
		return storage.NewFile(cfg.Storage.Dir)
	case "redis":
		return storage.NewRedis(cfg.RedisAddr())
	case "postgres":
		return storage.NewPostgres(cfg.DatabaseURL(), log)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Storage.Backend)
	}
}

// runOrderFlow resolves the table code and drives the interactive
// ordering loop until checkout or exit.
func runOrderFlow(ctx context.Context, client *api.Client, adapter storage.Adapter, log *logger.Logger, cfg *config.Config, code string) error {
	resolver := session.NewResolver(client, log)

	tableSession, err := resolver.Resolve(ctx, code)
	if err != nil {
		if errors.Is(err, session.ErrInvalidCode) {
			fmt.Printf("Invalid table code: %v\n", err)
			return nil
		}
		return err
	}
	fmt.Printf("Welcome to %s, table %d.\n", tableSession.RestaurantName, tableSession.TableNumber)

	menu, err := resolver.Menu(ctx, tableSession)
	if err != nil {
		return err
	}
	menuByID := make(map[string]models.MenuItem, len(menu))
	for _, item := range menu {
		menuByID[item.ID] = item
	}

	store := cart.NewStore(tableSession.RestaurantID, adapter, log)
	if err := store.Load(ctx); err != nil {
		return err
	}
	if !store.IsEmpty() {
		fmt.Println("Restored your previous cart for this restaurant.")
	}

	validator := coupon.NewValidator(client, log)
	orchestrator := checkout.NewOrchestrator(client, log)

	var applied *models.Coupon

	printQuote := func() {
		quote := pricing.Price(store.Lines(), applied)
		fmt.Printf("Subtotal %s  Discount %s  Total %s\n", quote.Subtotal, quote.Discount, quote.Total)
	}
	store.Subscribe(printQuote)

	fmt.Println("Commands: menu | add <item-id> | remove <item-id> | qty <item-id> <n> | cart | coupon <code> | nocoupon | checkout [notes] | quit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "menu":
			for _, item := range menu {
				note := ""
				if !item.IsAvailable {
					note = " (unavailable)"
				}
				fmt.Printf("  %-12s %-24s %s%s\n", item.ID, item.Name, item.Price, note)
			}
		case "add":
			if len(fields) != 2 {
				fmt.Println("usage: add <item-id>")
				continue
			}
			item, ok := menuByID[fields[1]]
			if !ok {
				fmt.Println("unknown item id")
				continue
			}
			if err := store.AddItem(ctx, item); err != nil {
				fmt.Printf("cannot add: %v\n", err)
			}
		case "remove":
			if len(fields) != 2 {
				fmt.Println("usage: remove <item-id>")
				continue
			}
			if err := store.RemoveOne(ctx, fields[1]); err != nil {
				fmt.Printf("cannot remove: %v\n", err)
			}
		case "qty":
			if len(fields) != 3 {
				fmt.Println("usage: qty <item-id> <n>")
				continue
			}
			n, err := strconv.Atoi(fields[2])
			if err != nil {
				fmt.Println("quantity must be a number")
				continue
			}
			if err := store.SetQuantity(ctx, fields[1], n); err != nil {
				fmt.Printf("cannot update: %v\n", err)
			}
		case "cart":
			for _, line := range store.Lines() {
				fmt.Printf("  %dx %-24s %s\n", line.Quantity, line.Name, line.Subtotal())
			}
			printQuote()
		case "coupon":
			if len(fields) != 2 {
				fmt.Println("usage: coupon <code>")
				continue
			}
			quote := pricing.Price(store.Lines(), nil)
			c, err := validator.Validate(ctx, fields[1], tableSession.RestaurantID, quote.Subtotal)
			if err != nil {
				fmt.Printf("coupon not applied: %v\n", err)
				continue
			}
			// A new coupon always replaces the previous one.
			applied = c
			printQuote()
		case "nocoupon":
			applied = nil
			printQuote()
		case "checkout":
			notes := strings.Join(fields[1:], " ")
			result, err := orchestrator.Submit(ctx, store, tableSession, applied, notes)
			if err != nil {
				fmt.Printf("checkout failed: %v\n", err)
				continue
			}
			if result.TotalMismatch {
				fmt.Printf("note: server total %s differs from local %s; server total applies\n",
					result.Order.Total, result.LocalQuote.Total)
			}
			fmt.Printf("Order %s placed, total %s.\n", result.Order.OrderNumber, result.Order.Total)
			applied = nil
			return trackAndPrint(ctx, client, log, cfg, result.Order.ID)
		case "quit":
			return nil
		default:
			fmt.Println("unknown command")
		}
	}
}

// trackAndPrint follows an order's status stream until it ends.
func trackAndPrint(ctx context.Context, client *api.Client, log *logger.Logger, cfg *config.Config, orderID string) error {
	tracker := tracking.NewTracker(client, log, cfg.PollInterval())
	watch := tracker.Track(ctx, orderID)
	defer watch.Stop()

	for update := range watch.Updates() {
		if update.Anomaly {
			fmt.Printf("  (server reported irregular status %s; keeping %s)\n", update.Status, update.Previous)
			continue
		}
		fmt.Printf("  status: %s\n", update.Status)
	}
	return nil
}
