package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"golang.org/x/oauth2"

	"voicecal/internal/booking"
	"voicecal/internal/config"
	"voicecal/internal/google"
	"voicecal/internal/icloud"
	"voicecal/internal/models"
)

func main() {
	// Load .env file first, but don't error if it doesn't exist.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "voicecal",
		Usage: "Book, move and cancel calendar events from structured voice intents.",
		Commands: []*cli.Command{
			authCommand(),
			bookCommand(),
			conflictsCommand(),
			moveCommand(),
			cancelCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func authCommand() *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authenticate with a Google account to get an API token.",
		Action: func(c *cli.Context) error {
			logger := setupLogger("info")
			logger.Info("Starting Google authentication flow.")

			cfg, err := google.GetOAuthConfigForAuthFlow(os.Getenv("GOOGLE_CLIENT_ID"), os.Getenv("GOOGLE_CLIENT_SECRET"))
			if err != nil {
				return fmt.Errorf("failed to get google oauth config: %w", err)
			}

			authURL := cfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
			fmt.Printf("Go to the following link in your browser then type the "+
				"authorization code: \n%v\n", authURL)

			fmt.Print("Enter Authorization Code: ")
			reader := bufio.NewReader(os.Stdin)
			authCode, _ := reader.ReadString('\n')
			authCode = strings.TrimSpace(authCode)

			token, err := google.TokenFromWeb(cfg, authCode)
			if err != nil {
				return fmt.Errorf("unable to retrieve token from web: %w", err)
			}

			fmt.Print("Enter a name for this account (e.g., 'personal', 'work'): ")
			accountName, _ := reader.ReadString('\n')
			accountName = strings.TrimSpace(accountName)
			tokenFile := "token-" + accountName + ".json"

			if err := google.SaveToken(tokenFile, token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			logger.Info("Successfully authenticated and saved token.", "file", tokenFile)
			return nil
		},
	}
}

func bookCommand() *cli.Command {
	return &cli.Command{
		Name:  "book",
		Usage: "Create a calendar event from an intent.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Usage: "Event title."},
			&cli.StringFlag{Name: "description", Usage: "Event description."},
			&cli.StringFlag{Name: "start", Usage: "Start time (ISO date or date-time)."},
			&cli.StringFlag{Name: "end", Usage: "End time (ISO date or date-time)."},
			&cli.IntFlag{Name: "duration", Usage: "Duration in minutes, used when --end is absent."},
			&cli.StringSliceFlag{Name: "attendee", Usage: "Attendee email. Repeatable."},
			&cli.StringFlag{Name: "timezone", Usage: "IANA timezone for naive times. Overrides the configured default."},
			&cli.BoolFlag{Name: "json", Usage: "Read an intent record as JSON from stdin instead of flags."},
			&cli.BoolFlag{Name: "force", Usage: "Book even when the slot has conflicting events."},
		},
		Action: func(c *cli.Context) error {
			booker, logger, err := newBooker(c)
			if err != nil {
				return err
			}

			intent := &models.IntentRecord{
				Title:           c.String("title"),
				Description:     c.String("description"),
				Start:           c.String("start"),
				End:             c.String("end"),
				DurationMinutes: c.Int("duration"),
				Attendees:       c.StringSlice("attendee"),
				Timezone:        c.String("timezone"),
			}
			if c.Bool("json") {
				intent = &models.IntentRecord{}
				if err := json.NewDecoder(os.Stdin).Decode(intent); err != nil {
					return fmt.Errorf("failed to decode intent record from stdin: %w", err)
				}
			}

			req, err := booker.Prepare(intent)
			if err != nil {
				return err
			}

			// Conflict detection is advisory: a failed check never blocks the
			// booking, but actual overlaps do unless --force is given.
			conflicts, err := booker.FindConflicts(c.Context, models.Window{Start: req.Start, End: req.End})
			if err != nil {
				logger.Warn("Proceeding without conflict information.", "error", err)
			}
			if len(conflicts) > 0 {
				printJSON(map[string]any{"conflicts": conflicts})
				if !c.Bool("force") {
					return fmt.Errorf("found %d conflicting event(s); re-run with --force to book anyway", len(conflicts))
				}
				logger.Info("Booking despite conflicts.", "count", len(conflicts))
			}

			event, err := booker.Create(c.Context, req)
			if err != nil {
				return err
			}
			return printJSON(event)
		},
	}
}

func conflictsCommand() *cli.Command {
	return &cli.Command{
		Name:  "conflicts",
		Usage: "List events overlapping a time window.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "start", Required: true, Usage: "Window start (ISO date or date-time)."},
			&cli.StringFlag{Name: "end", Required: true, Usage: "Window end (ISO date or date-time)."},
		},
		Action: func(c *cli.Context) error {
			booker, logger, err := newBooker(c)
			if err != nil {
				return err
			}

			window := models.Window{
				Start: booker.Normalize(c.String("start")),
				End:   booker.Normalize(c.String("end")),
			}
			conflicts, err := booker.FindConflicts(c.Context, window)
			if err != nil {
				logger.Warn("Conflict check failed, reporting an empty window.", "error", err)
			}
			if conflicts == nil {
				conflicts = []*models.Event{}
			}
			return printJSON(conflicts)
		},
	}
}

func moveCommand() *cli.Command {
	return &cli.Command{
		Name:  "move",
		Usage: "Reschedule an existing event, found by exact title.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Required: true, Usage: "Title of the event to move (case-insensitive exact match)."},
			&cli.StringFlag{Name: "start", Required: true, Usage: "New start time."},
			&cli.StringFlag{Name: "end", Required: true, Usage: "New end time."},
		},
		Action: func(c *cli.Context) error {
			booker, _, err := newBooker(c)
			if err != nil {
				return err
			}
			event, err := booker.Move(c.Context, c.String("title"), c.String("start"), c.String("end"))
			if err != nil {
				return err
			}
			return printJSON(event)
		},
	}
}

func cancelCommand() *cli.Command {
	return &cli.Command{
		Name:  "cancel",
		Usage: "Cancel an existing event, found by exact title.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Required: true, Usage: "Title of the event to cancel (case-insensitive exact match)."},
		},
		Action: func(c *cli.Context) error {
			booker, _, err := newBooker(c)
			if err != nil {
				return err
			}
			confirmation, err := booker.Cancel(c.Context, c.String("title"))
			if err != nil {
				return err
			}
			return printJSON(confirmation)
		},
	}
}

// newBooker wires configuration, logging and the selected calendar backend
// into a ready Booker.
func newBooker(c *cli.Context) (*booking.Booker, *slog.Logger, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, nil, err
	}
	logger := setupLogger(cfg.LogLevel)

	zone, err := cfg.Location()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid timezone '%s': %w", cfg.Timezone, err)
	}

	var service booking.Service
	switch cfg.Backend {
	case config.BackendGoogle:
		service, err = google.NewClient(c.Context, logger, cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleAccount)
	case config.BackendICloud:
		service, err = icloud.NewClient(logger, cfg.ICloudUsername, cfg.ICloudPassword, cfg.ICloudCalendar)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s client: %w", cfg.Backend, err)
	}

	return booking.NewBooker(logger, service, cfg.CalendarID, zone), logger, nil
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}
