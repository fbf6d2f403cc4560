package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/aerodesk/aerodesk/config"
	"github.com/aerodesk/aerodesk/internal/airports"
	"github.com/aerodesk/aerodesk/internal/domain"
	"github.com/aerodesk/aerodesk/internal/guard"
	"github.com/aerodesk/aerodesk/internal/session"
	"github.com/aerodesk/aerodesk/internal/store"
	"github.com/aerodesk/aerodesk/internal/ticketapi"
	"github.com/aerodesk/aerodesk/internal/transport"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

const usage = `usage: aerodesk <command> [flags]

commands:
  login      authenticate and persist the session
  logout     clear the session
  me         show the current user profile
  flights    search flights
  book       book a ticket
  refund     refund a ticket by id
  tickets    list booked and refunded tickets
  bookings   search backend bookings
  guard      evaluate a route transition
`

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	sessions, err := newSessionStore(cfg)
	if err != nil {
		log.Fatalf("session store: %v", err)
	}

	src, err := newSource(cfg, sessions)
	if err != nil {
		log.Fatalf("api source: %v", err)
	}

	app := store.New(src, sessions)

	ctx, cancel := context.WithTimeout(context.Background(), 2*cfg.API.Timeout())
	defer cancel()

	if err := run(ctx, app, sessions, os.Args[1], os.Args[2:]); err != nil {
		log.Fatalf("%s: %v", os.Args[1], err)
	}
}

func newSessionStore(cfg *config.Config) (session.Store, error) {
	switch cfg.Session.Backend {
	case "file":
		return session.NewFileStore(cfg.Session.File), nil
	case "redis":
		return session.NewRedisStore(cfg.Redis, cfg.Session.Key), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}
}

// newSource builds the endpoint source: remote only, or remote with
// synthetic failover when degraded mode is enabled.
func newSource(cfg *config.Config, sessions session.Store) (ticketapi.Source, error) {
	tokens := func(ctx context.Context) string {
		sess, err := sessions.Load(ctx)
		if err != nil {
			return ""
		}
		return sess.AccessToken
	}
	remote := ticketapi.NewRemoteSource(transport.NewClient(cfg.API.BaseURL, cfg.API.Timeout(), tokens))

	if !cfg.Degraded.Enabled {
		return remote, nil
	}
	table, err := airports.Load()
	if err != nil {
		return nil, err
	}
	return ticketapi.NewFailoverSource(remote, ticketapi.NewSyntheticSource(table)), nil
}

func run(ctx context.Context, app *store.Store, sessions session.Store, command string, args []string) error {
	switch command {
	case "login":
		flags := pflag.NewFlagSet("login", pflag.ExitOnError)
		username := flags.StringP("username", "u", "", "username")
		password := flags.StringP("password", "p", "", "password")
		flags.Parse(args)
		pair, err := app.Login(ctx, ticketapi.Credentials{Username: *username, Password: *password})
		if err != nil {
			return err
		}
		return printJSON(pair)

	case "logout":
		return app.Logout(ctx)

	case "me":
		if err := app.Initialize(ctx); err != nil {
			return err
		}
		if !app.LoggedIn() {
			return fmt.Errorf("not logged in")
		}
		return printJSON(app.User())

	case "flights":
		flags := pflag.NewFlagSet("flights", pflag.ExitOnError)
		from := flags.String("from", "", "origin airport code")
		to := flags.String("to", "", "destination airport code")
		date := flags.String("date", "", "departure date")
		flags.Parse(args)
		flights, err := app.FetchFlights(ctx, ticketapi.FlightQuery{From: *from, To: *to, Date: *date})
		if err != nil {
			return err
		}
		return printJSON(flights)

	case "book":
		flags := pflag.NewFlagSet("book", pflag.ExitOnError)
		flight := flags.String("flight", "", "flight number")
		from := flags.String("from", "", "origin airport code")
		to := flags.String("to", "", "destination airport code")
		date := flags.String("date", time.Now().Format("2006-01-02"), "departure date")
		depTime := flags.String("time", "09:00", "departure time")
		price := flags.Int64("price", 0, "ticket price")
		name := flags.String("name", "", "passenger name")
		passengerID := flags.String("passenger-id", "", "passenger document id")
		flags.Parse(args)
		ticket, err := app.BookTicket(ctx, store.TicketRequest{
			FlightNumber:  *flight,
			From:          *from,
			To:            *to,
			Date:          *date,
			Time:          *depTime,
			Price:         *price,
			PassengerName: *name,
			PassengerID:   *passengerID,
		})
		if err != nil {
			return err
		}
		return printJSON(ticket)

	case "refund":
		flags := pflag.NewFlagSet("refund", pflag.ExitOnError)
		id := flags.String("id", "", "ticket id")
		flags.Parse(args)
		if err := app.Initialize(ctx); err != nil {
			return err
		}
		return app.RefundTicket(ctx, *id)

	case "tickets":
		if err := app.Initialize(ctx); err != nil {
			return err
		}
		return printJSON(map[string][]domain.Ticket{
			"booked":   app.BookedTickets(),
			"refunded": app.RefundedTickets(),
		})

	case "bookings":
		flags := pflag.NewFlagSet("bookings", pflag.ExitOnError)
		status := flags.String("status", "", "booking status filter")
		page := flags.Int("page", 1, "page")
		size := flags.Int("size", 10, "page size")
		flags.Parse(args)
		result, err := app.SearchBookings(ctx, ticketapi.BookingQuery{
			Status: domain.BookingStatus(*status),
			Page:   *page,
			Size:   *size,
		})
		if err != nil {
			return err
		}
		return printJSON(result)

	case "guard":
		flags := pflag.NewFlagSet("guard", pflag.ExitOnError)
		path := flags.String("path", "/", "target route path")
		flags.Parse(args)
		if err := app.Initialize(ctx); err != nil {
			return err
		}
		g := guard.New(guard.DefaultRoutes(), app, sessions)
		return printJSON(g.Decide(ctx, *path))

	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
