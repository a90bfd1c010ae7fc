package asthmacli

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/pchp/asthma-etl/asthma/constants"
	"github.com/pchp/asthma-etl/asthma/export"
	"github.com/pchp/asthma-etl/asthma/metrics"
	"github.com/pchp/asthma-etl/asthma/pipeline"
	"github.com/pchp/asthma-etl/asthma/source"
	"github.com/pchp/asthma-etl/asthma/store"
	"github.com/pchp/asthma-etl/conf"
	"github.com/pchp/asthma-etl/log"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

// App Name and usage.  Edit them here to prevent breaking tests
const Name = "asthma-etl"
const Usage = "Pediatric asthma claims and pharmacy classification"

func GetApp() *cli.App {
	return setUpApp()
}

// runOptions are the flags shared by the process commands.
type runOptions struct {
	claims, pharmacy string
	output, audit    string
	save             bool
}

func setUpApp() *cli.App {
	app := cli.NewApp()
	app.Name = Name
	app.Usage = Usage
	app.Version = constants.Version

	var opts runOptions
	var schemaFile, migrationsDir string

	outputFlags := []cli.Flag{
		cli.StringFlag{
			Name:        "output",
			Usage:       "Member level output (.csv or .parquet, local path or s3:// URI)",
			Destination: &opts.output,
		},
		cli.StringFlag{
			Name:        "audit",
			Usage:       "Optional CSV listing members seen with more than one Medicaid ID",
			Destination: &opts.audit,
		},
		cli.BoolFlag{
			Name:        "save",
			Usage:       "Persist the member level table to DATABASE_URL",
			Destination: &opts.save,
		},
	}
	claimsFlag := cli.StringFlag{
		Name:        "claims",
		Usage:       "Claims extract (local path or s3:// URI)",
		Destination: &opts.claims,
	}
	pharmacyFlag := cli.StringFlag{
		Name:        "pharmacy",
		Usage:       "Pharmacy extract (local path or s3:// URI)",
		Destination: &opts.pharmacy,
	}

	app.Commands = []cli.Command{
		{
			Name:     "process",
			Category: "Data processing",
			Usage:    "Build the combined member level table from a claims and a pharmacy extract",
			Flags:    append([]cli.Flag{claimsFlag, pharmacyFlag}, outputFlags...),
			Action: func(c *cli.Context) error {
				if opts.claims == "" || opts.pharmacy == "" {
					return errors.New("both --claims and --pharmacy must be provided")
				}
				return process(context.Background(), app, opts)
			},
		},
		{
			Name:     "process-claims",
			Category: "Data processing",
			Usage:    "Build the member level visit table from a claims extract",
			Flags:    append([]cli.Flag{claimsFlag}, outputFlags...),
			Action: func(c *cli.Context) error {
				if opts.claims == "" {
					return errors.New("claims extract (--claims) must be provided")
				}
				opts.pharmacy = ""
				return process(context.Background(), app, opts)
			},
		},
		{
			Name:     "process-pharmacy",
			Category: "Data processing",
			Usage:    "Build the member level adherence table from a pharmacy extract",
			Flags:    append([]cli.Flag{pharmacyFlag}, outputFlags...),
			Action: func(c *cli.Context) error {
				if opts.pharmacy == "" {
					return errors.New("pharmacy extract (--pharmacy) must be provided")
				}
				opts.claims = ""
				return process(context.Background(), app, opts)
			},
		},
		{
			Name:     "validate-schema",
			Category: "Data validation",
			Usage:    "Compare a parquet extract with the reference schema for its kind",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:        "file",
					Usage:       "Extract to validate (local path or s3:// URI)",
					Destination: &schemaFile,
				},
			},
			Action: func(c *cli.Context) error {
				if schemaFile == "" {
					return errors.New("file (--file) must be provided")
				}
				return validateSchema(context.Background(), app, schemaFile)
			},
		},
		{
			Name:     "migrate",
			Category: "Database",
			Usage:    "Apply the database migrations",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:        "dir",
					Usage:       "Directory holding the migrations. Defaults to ASTHMA_MIGRATIONS_DIR",
					Destination: &migrationsDir,
				},
			},
			Action: func(c *cli.Context) error {
				var cfg store.Config
				if err := conf.Checkout(&cfg); err != nil {
					return err
				}
				if migrationsDir != "" {
					cfg.MigrationsDir = migrationsDir
				}
				if cfg.DatabaseURL == "" {
					return errors.New("DATABASE_URL must be set")
				}
				if err := store.Migrate(cfg.DatabaseURL, cfg.MigrationsDir); err != nil {
					return err
				}
				fmt.Fprintf(app.Writer, "Applied migrations from %s\n", cfg.MigrationsDir)
				return nil
			},
		},
	}
	return app
}

func sourceOptions() (source.Options, error) {
	var opts source.Options
	if err := conf.Checkout(&opts); err != nil {
		return source.Options{}, err
	}
	return opts, nil
}

// fetch makes every non-empty path available locally. cleanup removes the
// temporary copies.
func fetch(ctx context.Context, srcOpts source.Options, paths ...string) (locals []string, cleanup func(), err error) {
	var cleanups []func()
	cleanup = func() {
		for _, c := range cleanups {
			c()
		}
	}
	for _, p := range paths {
		if p == "" {
			locals = append(locals, "")
			continue
		}
		local, c, err := source.NewFileHandler(p, srcOpts, log.ETL).Fetch(ctx, p)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		cleanups = append(cleanups, c)
		locals = append(locals, local)
	}
	return locals, cleanup, nil
}

// publish writes dest through write. s3:// destinations are written to a
// temporary file first.
func publish(ctx context.Context, srcOpts source.Options, dest string, write func(string) error) error {
	if !source.IsS3(dest) {
		return write(dest)
	}

	dir, err := os.MkdirTemp("", "asthma-output-*")
	if err != nil {
		return errors.Wrap(err, "failed to create output staging directory")
	}
	defer os.RemoveAll(dir)

	local := filepath.Join(dir, path.Base(dest))
	if err := write(local); err != nil {
		return err
	}
	return source.NewFileHandler(dest, srcOpts, log.ETL).Store(ctx, local, dest)
}

func process(ctx context.Context, app *cli.App, opts runOptions) error {
	if opts.output == "" && !opts.save {
		return errors.New("an output (--output) or --save must be provided")
	}

	cfg, err := pipeline.LoadConfig()
	if err != nil {
		return err
	}
	srcOpts, err := sourceOptions()
	if err != nil {
		return err
	}

	locals, cleanup, err := fetch(ctx, srcOpts, opts.claims, opts.pharmacy)
	if err != nil {
		return err
	}
	defer cleanup()

	timer := metrics.GetTimer()
	defer timer.Close()
	ctx = metrics.NewContext(ctx, timer)

	result, err := pipeline.New(cfg, log.ETL).Run(ctx, pipeline.Inputs{ClaimsPath: locals[0], PharmacyPath: locals[1]})
	if err != nil {
		return err
	}

	if opts.output != "" {
		if err := publish(ctx, srcOpts, opts.output, func(p string) error {
			return export.WriteMemberTable(p, result.Members)
		}); err != nil {
			return err
		}
	}
	if opts.audit != "" {
		if err := publish(ctx, srcOpts, opts.audit, func(p string) error {
			return export.WriteAudit(p, result.Audit)
		}); err != nil {
			return err
		}
	}
	if opts.save {
		if err := save(ctx, opts, result); err != nil {
			return err
		}
	}

	fmt.Fprintf(app.Writer, "Completed asthma run %s.  Members: %d.  Members with multiple IDs: %d.  See logs for more details.\n",
		result.RunID, result.Members.Len(), len(result.Audit))
	return nil
}

func save(ctx context.Context, opts runOptions, result *pipeline.Result) error {
	var cfg store.Config
	if err := conf.Checkout(&cfg); err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL must be set to use --save")
	}

	pool, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	run := store.Run{
		ID:           result.RunID,
		ClaimsPath:   opts.claims,
		PharmacyPath: opts.pharmacy,
		Period:       result.Period,
		Members:      result.Members.Len(),
		CreatedAt:    time.Now().UTC(),
	}
	if pcfg, err := pipeline.LoadConfig(); err == nil {
		run.StrictIDs = pcfg.StrictMemberIDs
	}
	return store.NewRepository(pool, log.ETL).SaveRun(ctx, run, result.Members)
}

func validateSchema(ctx context.Context, app *cli.App, file string) error {
	cfg, err := pipeline.LoadConfig()
	if err != nil {
		return err
	}
	srcOpts, err := sourceOptions()
	if err != nil {
		return err
	}
	locals, cleanup, err := fetch(ctx, srcOpts, file)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := cfg.References().Validate(locals[0]); err != nil {
		return err
	}
	fmt.Fprintf(app.Writer, "Schema of %s matches the reference\n", file)
	return nil
}
