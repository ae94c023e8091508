package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	intconfig "spotmarket/internal/config"
	intdb "spotmarket/internal/db"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// NewSeedCmd creates the seed command
func NewSeedCmd() *cobra.Command {
	var (
		dbc     intconfig.DBConfig
		price   string
		start   string
		dryRun  bool
		asSQL   bool
		migrate bool
	)
	o := intdb.DefaultSeedOptions(time.Now())

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create zones and empty parking slots",
		Long: `Inserts zones and one slot per 15 minutes for every spot over the requested
number of days. Existing rows are left untouched, so seeding is repeatable.
The database password is read from SPOTMARKET_DB_PASSWORD.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := decimal.NewFromString(price)
			if err != nil {
				return fmt.Errorf("invalid price %q: %w", price, err)
			}
			o.Price = p

			if start != "" {
				t, err := time.Parse(time.DateOnly, start)
				if err != nil {
					return fmt.Errorf("invalid start date %q: %w", start, err)
				}
				o.Start = t.UTC()
			}

			if asSQL {
				return intdb.WriteSQL(cmd.OutOrStdout(), dbc.Dialect(), o)
			}

			yellow := color.New(color.FgYellow).SprintFunc()
			green := color.New(color.FgGreen).SprintFunc()
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "Seeding %d zones x %d spots x %d days from %s (%s slots)\n",
				o.Zones, o.SpotsPerZone, o.Days, o.Start.Format(time.DateOnly), yellow(o.SlotCount()))
			if dryRun {
				return nil
			}

			if dbc.Driver == intconfig.DriverPostgres && !cmd.Flags().Changed("port") {
				dbc.Port = 5432
			}
			dbc.Password = os.Getenv(intconfig.Prefix + "_DB_PASSWORD")
			db, err := intconfig.ConnectDB(dbc)
			if err != nil {
				return fmt.Errorf("failed to connect: %w", err)
			}
			defer intconfig.CloseDB()

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
			defer cancel()

			if migrate {
				if err := intdb.EnsureSchema(ctx, db); err != nil {
					return err
				}
			}

			n, err := intdb.Seed(ctx, db, dbc.Dialect(), o)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s %d rows inserted\n", green("✓"), n)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&dbc.Driver, "driver", intconfig.DriverMySQL, "mysql or postgres")
	f.StringVar(&dbc.Host, "host", "127.0.0.1", "Database host")
	f.IntVar(&dbc.Port, "port", 3306, "Database port")
	f.StringVar(&dbc.User, "user", "root", "Database user")
	f.StringVar(&dbc.Name, "name", "spot_market", "Database name")
	f.StringVar(&dbc.SSLMode, "sslmode", "disable", "Postgres sslmode")
	f.IntVar(&o.Zones, "zones", o.Zones, "Number of zones")
	f.IntVar(&o.SpotsPerZone, "spots", o.SpotsPerZone, "Spots per zone")
	f.IntVar(&o.Days, "days", o.Days, "Days of slots per spot")
	f.StringVar(&o.Owner, "owner", o.Owner, "Initial owner pid of every slot")
	f.StringVar(&price, "price", o.Price.String(), "Initial slot price")
	f.StringVar(&start, "start", "", "First day, YYYY-MM-DD (default today UTC)")
	f.BoolVar(&asSQL, "sql", false, "Print the inventory as a SQL script instead of inserting it")
	f.BoolVar(&dryRun, "dry-run", false, "Only print what would be seeded")
	f.BoolVar(&migrate, "migrate", true, "Create missing tables first")

	return cmd
}
