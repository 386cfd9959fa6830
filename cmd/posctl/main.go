// Command posctl is a text terminal for the POS API.
//
//	posctl tables
//	posctl table T1 [-choose bill|view|start]
//	posctl order -table T1 -customer Asha "Paneer Tikka:2:extra spicy" Naan:3
//	posctl advance 3F9A21C0 cooking
//	posctl pay 3F9A21C0 cash
//	posctl bill 3F9A21C0
//	posctl watch
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/tasteparadise/pos/internal/client"
	"github.com/tasteparadise/pos/internal/config"
	"github.com/tasteparadise/pos/internal/store"
	"github.com/tasteparadise/pos/internal/terminal"
)

// snapshotKey is the Redis hash shared by every terminal of the outlet.
const snapshotKey = "pos:snapshots"

type command struct {
	usage string
	run   func(ctx context.Context, a *app, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"tables":       {"tables", runTables},
		"table":        {"table <number> [-choose start|bill|view]", runTable},
		"table-status": {"table-status <number> <available|occupied|reserved|cleaning>", runTableStatus},
		"table-add":    {"table-add -number T7 [-capacity 4]", runTableAdd},
		"clear":        {"clear <number>", runClear},
		"init-tables":  {"init-tables", runInitTables},
		"order":        {"order [-table T1] [-customer name] item[:qty[:note]]...", runOrder},
		"orders":       {"orders [-status pending]", runOrders},
		"advance":      {"advance <order> <cooking|ready|served>", runAdvance},
		"cancel":       {"cancel <order>", runCancel},
		"pay":          {"pay <order> <cash|online>", runPay},
		"bill":         {"bill <order>", runBill},
		"kot":          {"kot <order>", runKOT},
		"kots":         {"kots", runKOTs},
		"pending":      {"pending", runPending},
		"menu":         {"menu", runMenu},
		"menu-add":     {"menu-add -name Lassi -price 60 [-category Drinks] [-prep 5]", runMenuAdd},
		"menu-rm":      {"menu-rm <menu item id>", runMenuRemove},
		"dashboard":    {"dashboard", runDashboard},
		"watch":        {"watch", runWatch},
	}
}

type app struct {
	api *client.Client
	svc *terminal.Service
}

func main() {
	log.SetFlags(0)
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}
	cmd, ok := commands[flag.Arg(0)]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", flag.Arg(0))
		usage()
		os.Exit(2)
	}

	cfg := config.Load()
	if cfg.APIStaff == "" || cfg.APIPin == "" {
		log.Fatal("API_STAFF and API_PIN must be set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := client.New(cfg.APIURL)
	if _, err := api.Login(ctx, cfg.APIStaff, cfg.APIPin); err != nil {
		log.Fatalf("login: %v", err)
	}

	cache, closeCache := newCache(ctx, cfg.RedisAddr)
	defer closeCache()

	a := &app{
		api: api,
		svc: terminal.New(store.New(api, cache), cfg.TaxRate),
	}
	if err := cmd.run(ctx, a, flag.Args()[1:]); err != nil {
		var te *client.TransportError
		if errors.As(err, &te) {
			log.Fatalf("api: %v", te)
		}
		log.Fatalf("%s: %v", flag.Arg(0), err)
	}
}

// newCache shares snapshots through Redis when addr is set and reachable,
// otherwise keeps them in memory.
func newCache(ctx context.Context, addr string) (store.Cache, func()) {
	if addr == "" {
		return store.NewMemoryCache(), func() {}
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("WARNING: redis %s unavailable, using a local cache: %v", addr, err)
		rdb.Close()
		return store.NewMemoryCache(), func() {}
	}
	return store.NewRedisCache(rdb, snapshotKey), func() { rdb.Close() }
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: posctl <command> [args]")
	fmt.Fprintln(os.Stderr)
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "  %s\n", commands[name].usage)
	}
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Environment: API_URL, API_STAFF, API_PIN, REDIS_ADDR, TAX_RATE")
}

// wantArgs checks the positional argument count of a command.
func wantArgs(args []string, n int, usage string) error {
	if len(args) != n {
		return fmt.Errorf("usage: posctl %s", usage)
	}
	return nil
}

// parsePick reads item[:qty[:note]].
func parsePick(arg string) (terminal.Pick, error) {
	parts := strings.SplitN(arg, ":", 3)
	p := terminal.Pick{Item: strings.TrimSpace(parts[0]), Quantity: 1}
	if p.Item == "" {
		return p, fmt.Errorf("empty item in %q", arg)
	}
	if len(parts) > 1 && parts[1] != "" {
		n, err := strconv.Atoi(parts[1])
		if err != nil {
			return p, fmt.Errorf("invalid quantity in %q", arg)
		}
		p.Quantity = n
	}
	if len(parts) > 2 {
		p.Note = strings.TrimSpace(parts[2])
	}
	return p, nil
}
