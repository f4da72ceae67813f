package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/jonpan30062/newsaferoute/internal/cache"
	"github.com/jonpan30062/newsaferoute/internal/config"
	"github.com/jonpan30062/newsaferoute/internal/database"
	"github.com/jonpan30062/newsaferoute/internal/logger"
	"github.com/jonpan30062/newsaferoute/internal/middleware"
	"github.com/jonpan30062/newsaferoute/internal/models"
	"github.com/jonpan30062/newsaferoute/internal/notify"
	"github.com/jonpan30062/newsaferoute/internal/repository"
	"github.com/jonpan30062/newsaferoute/internal/services"
)

func main() {
	args := os.Args
	if len(args) == 1 {
		args = append(args, "--help")
	}

	root := &cli.Command{
		Name:  "saferoutectl",
		Usage: "Operator commands for the SafeRoute API database",
		Commands: []*cli.Command{
			migrateCommand(),
			concernsCommand(),
			alertsCommand(),
			tokenCommand(),
		},
	}

	if err := root.Run(context.Background(), args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// env holds the connections a command needs. Call close when done.
type env struct {
	cfg   *config.Config
	log   *logger.Logger
	db    *database.Database
	close func()
}

func openEnv(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.New(cfg.Server.Env)

	db, err := database.NewPostgresPool(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: log, db: db, close: db.Close}, nil
}

// sideEffects connects the alert cache and event publisher so changes made
// from the command line reach map clients the same way API changes do.
func (e *env) sideEffects(ctx context.Context) (cache.AlertCache, notify.Publisher, error) {
	var alertCache cache.AlertCache = cache.Noop{}
	var publisher notify.Publisher = notify.Noop{}

	if e.cfg.Redis.Enabled() {
		client, err := cache.NewRedisClient(ctx, e.cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		alertCache = cache.NewRedisAlertCache(client, e.cfg.Redis.AlertCacheTTL)
		closeDB := e.close
		e.close = func() {
			_ = client.Close()
			closeDB()
		}
	}
	if e.cfg.MQTT.Enabled() {
		p, err := notify.NewMQTTPublisher(e.cfg.MQTT)
		if err != nil {
			return nil, nil, err
		}
		publisher = p
		prev := e.close
		e.close = func() {
			p.Close()
			prev()
		}
	}
	return alertCache, publisher, nil
}

func migrateCommand() *cli.Command {
	run := func(direction string) cli.ActionFunc {
		return func(ctx context.Context, c *cli.Command) error {
			e, err := openEnv(ctx)
			if err != nil {
				return err
			}
			defer e.close()

			if err := e.db.Migrate(ctx, direction); err != nil {
				return err
			}
			e.log.Info("Migrations complete", map[string]interface{}{"direction": direction})
			return nil
		}
	}

	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply or inspect schema migrations",
		Commands: []*cli.Command{
			{Name: "up", Usage: "Apply all pending migrations", Action: run(database.MigrateUp)},
			{Name: "down", Usage: "Roll back the latest migration", Action: run(database.MigrateDown)},
			{Name: "status", Usage: "Print migration status", Action: run(database.MigrateStatus)},
		},
	}
}

func concernsCommand() *cli.Command {
	reviewerFlag := func() cli.Flag {
		return &cli.Int64Flag{Name: "reviewer", Usage: "user id recorded as the alert author"}
	}

	return &cli.Command{
		Name:  "concerns",
		Usage: "Review safety concerns",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List concerns",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "status"},
					&cli.StringFlag{Name: "category"},
					&cli.StringFlag{Name: "search"},
					&cli.IntFlag{Name: "page", Value: 1},
					&cli.IntFlag{Name: "limit", Value: models.DefaultPageSize},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					e, err := openEnv(ctx)
					if err != nil {
						return err
					}
					defer e.close()

					svc := services.NewConcernService(repository.NewConcernRepository(e.db), e.log)
					page, err := svc.List(ctx, models.ConcernFilter{
						Status:   models.ConcernStatus(c.String("status")),
						Category: models.ConcernCategory(c.String("category")),
						Search:   c.String("search"),
						Page:     int(c.Int("page")),
						Limit:    int(c.Int("limit")),
					})
					if err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(page)
					}
					printConcerns(page)
					return nil
				},
			},
			{
				Name:  "approve",
				Usage: "Approve a concern and publish it as a map alert",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "id", Required: true},
					reviewerFlag(),
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					approvals, done, err := openApprovals(ctx)
					if err != nil {
						return err
					}
					defer done()

					alertID, err := approvals.Approve(ctx, c.Int64("id"), reviewer(c))
					if err != nil {
						return fmt.Errorf("%s: %w", services.ErrorCode(err), err)
					}
					fmt.Println(services.ApprovalNote(alertID))
					return nil
				},
			},
			{
				Name:  "approve-batch",
				Usage: "Approve several concerns; failures are reported per concern",
				Flags: []cli.Flag{
					&cli.Int64SliceFlag{Name: "ids", Required: true, Usage: "concern ids, repeat or comma separate"},
					reviewerFlag(),
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					approvals, done, err := openApprovals(ctx)
					if err != nil {
						return err
					}
					defer done()

					result := approvals.ApproveBatch(ctx, c.Int64Slice("ids"), reviewer(c))
					if c.Bool("json") {
						return printJSON(result)
					}
					printBatch(result)
					return nil
				},
			},
			{
				Name:  "set-status",
				Usage: "Move a concern to another review status",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "id", Required: true},
					&cli.StringFlag{Name: "status", Required: true},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					status := models.ConcernStatus(c.String("status"))
					if !status.Valid() {
						return fmt.Errorf("invalid status %q, allowed: %v", status, models.ConcernStatuses)
					}

					e, err := openEnv(ctx)
					if err != nil {
						return err
					}
					defer e.close()

					svc := services.NewConcernService(repository.NewConcernRepository(e.db), e.log)
					concern, err := svc.SetStatus(ctx, c.Int64("id"), status)
					if err != nil {
						return err
					}
					fmt.Printf("concern %d is now %s\n", concern.ID, concern.Status)
					return nil
				},
			},
		},
	}
}

func alertsCommand() *cli.Command {
	return &cli.Command{
		Name:  "alerts",
		Usage: "Maintain map alerts",
		Commands: []*cli.Command{
			{
				Name:  "expire-elapsed",
				Usage: "Deactivate alerts whose end date has passed",
				Action: func(ctx context.Context, c *cli.Command) error {
					e, err := openEnv(ctx)
					if err != nil {
						return err
					}
					defer func() { e.close() }()

					alertCache, publisher, err := e.sideEffects(ctx)
					if err != nil {
						return err
					}
					svc := services.NewAlertService(repository.NewAlertRepository(e.db), alertCache, publisher, e.log)
					n, err := svc.ExpireElapsed(ctx)
					if err != nil {
						return err
					}
					fmt.Printf("expired %d alerts\n", n)
					return nil
				},
			},
		},
	}
}

func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Mint bearer tokens signed with JWT_SECRET",
		Flags: []cli.Flag{
			&cli.Int64Flag{Name: "user", Required: true},
			&cli.BoolFlag{Name: "staff", Usage: "grant reviewer access"},
			&cli.DurationFlag{Name: "ttl", Value: 12 * time.Hour},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			auth := middleware.NewAuthenticator(cfg.Auth)
			token, err := auth.Sign(middleware.Identity{
				UserID: c.Int64("user"),
				Staff:  c.Bool("staff"),
			}, c.Duration("ttl"))
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
}

func openApprovals(ctx context.Context) (services.ApprovalService, func(), error) {
	e, err := openEnv(ctx)
	if err != nil {
		return nil, nil, err
	}
	alertCache, publisher, err := e.sideEffects(ctx)
	if err != nil {
		e.close()
		return nil, nil, err
	}
	svc := services.NewApprovalService(repository.NewConcernRepository(e.db), alertCache, publisher, e.log)
	return svc, func() { e.close() }, nil
}

func reviewer(c *cli.Command) *int64 {
	if !c.IsSet("reviewer") {
		return nil
	}
	id := c.Int64("reviewer")
	return &id
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

func printConcerns(page *services.ConcernPage) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tCATEGORY\tLOCATION\tCREATED")
	for _, c := range page.Concerns {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			c.ID, c.Status, c.Category, c.LocationAddress, c.CreatedAt.Format(time.RFC3339))
	}
	_ = w.Flush()
	fmt.Printf("page %d, %d of %d\n", page.Page, len(page.Concerns), page.Total)
}

func printBatch(result services.BatchResult) {
	fmt.Printf("created %d, skipped %d\n", result.Created, result.Skipped)
	if len(result.AlertIDs) > 0 {
		ids := make([]string, 0, len(result.AlertIDs))
		for _, id := range result.AlertIDs {
			ids = append(ids, strconv.FormatInt(id, 10))
		}
		fmt.Printf("alerts: %v\n", ids)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, item := range result.Errors {
		fmt.Fprintf(w, "%d\t%s\t%s\n", item.ConcernID, item.Code, item.Message)
	}
	_ = w.Flush()
}
