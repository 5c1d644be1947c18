package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"tidygrid/config"
	"tidygrid/core"

	"cloud.google.com/go/storage"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	// Database drivers

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
)

func main() {
	if err := run(os.Stderr, os.Args[1:]); err != nil {
		slog.Error("Generation failed", "error", err)
		os.Exit(1)
	}
}

// paramFlag collects repeatable key=value flags.
type paramFlag map[string]string

func (p paramFlag) String() string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+p[k])
	}
	return strings.Join(pairs, ",")
}

func (p paramFlag) Set(value string) error {
	k, v, ok := strings.Cut(value, "=")
	if !ok || k == "" {
		return fmt.Errorf("want key=value, got %q", value)
	}
	p[k] = v
	return nil
}

func run(output io.Writer, args []string) error {
	flags := flag.NewFlagSet("tidygrid", flag.ContinueOnError)
	flags.SetOutput(output)
	flags.Usage = func() {
		fmt.Fprintln(output, "Usage: tidygrid [flags] <source-table> [output-prefix]")
		flags.PrintDefaults()
	}

	configFile := flags.String("config", "", "Path to report configuration (YAML)")
	variantDir := flags.String("variants", "", "Directory of additional variant definitions (YAML)")
	variant := flags.String("variant", "", "Report variant: salmon, basic or a configured one")
	fetcherType := flags.String("fetcher", "", "Data fetcher type: csv, xlsx, mysql, postgres, dynamodb (default: from the source name)")
	dbDSN := flags.String("db-dsn", "", "Database connection string (DSN) for mysql/postgres")
	orderBy := flags.String("order-by", "", "Column to order SQL rows by")
	sheet := flags.String("sheet", "", "Sheet to read from an xlsx source (default: first)")
	filters := paramFlag{}
	flags.Var(filters, "filter", "Keep rows where field=value (repeatable)")
	params := paramFlag{}
	flags.Var(params, "param", "Set a name=value parameter for prefixes and sheet names (repeatable)")
	blocksPerPage := flags.Int("blocks-per-page", 0, "Blocks per sheet in the multi-sheet workbook")
	colsPerRow := flags.Int("cols-per-row", 0, "Blocks per grid row")
	maxBlocks := flags.Int("max-blocks", -1, "Cap on blocks in the single-sheet workbook (0 = the variant's cap)")
	strict := flags.Bool("strict", false, "Fail when rows of one sample disagree on summary fields")
	singleOnly := flags.Bool("single-only", false, "Only write the single-sheet workbook")
	multiOnly := flags.Bool("multi-only", false, "Only write the multi-sheet workbook")
	manifest := flags.String("manifest", "", "Write a placement manifest CSV with this name to the output directory")
	outputDir := flags.String("output", "", "Directory for output files")
	s3Bucket := flags.String("s3-bucket", "", "S3 bucket name for uploading output")
	s3Prefix := flags.String("s3-prefix", "", "S3 prefix (folder) for uploaded files")
	listVariants := flags.Bool("list-variants", false, "List the available report variants and exit")
	verbose := flags.Bool("v", false, "Debug logging")

	if err := flags.Parse(args); err != nil {
		return err
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	if *listVariants {
		return printVariants(output, *configFile, *variantDir)
	}

	if flags.NArg() < 1 || flags.NArg() > 2 {
		flags.Usage()
		return errors.New("expected a source table and an optional output prefix")
	}
	source := flags.Arg(0)

	// 1. Load Config
	cfg := config.DefaultReportConfig()
	if *configFile != "" {
		slog.Info("Loading report configuration", "file", *configFile)
		loaded, err := config.LoadReportConfig(*configFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	if *singleOnly && *multiOnly {
		return errors.New("-single-only and -multi-only are mutually exclusive")
	}
	overrides := flagOverrides{
		variant:       *variant,
		fetcher:       *fetcherType,
		dsn:           *dbDSN,
		orderBy:       *orderBy,
		sheet:         *sheet,
		filters:       filters,
		blocksPerPage: *blocksPerPage,
		colsPerRow:    *colsPerRow,
		maxBlocks:     *maxBlocks,
		strict:        *strict,
		singleOnly:    *singleOnly,
		multiOnly:     *multiOnly,
		manifest:      *manifest,
		outputDir:     *outputDir,
		s3Bucket:      *s3Bucket,
		s3Prefix:      *s3Prefix,
	}
	if flags.NArg() == 2 {
		overrides.prefix = flags.Arg(1)
	}
	overrides.apply(cfg)

	// 2. Resolve Variants and Validate
	registry, err := newRegistry(cfg, *variantDir)
	if err != nil {
		return err
	}
	if err := config.NewValidator(registry).ValidateReport(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// 3. Prepare Data Fetcher
	kind := resolveFetcher(cfg.Source.Fetcher, source)
	if (kind == config.FetcherCSV || kind == config.FetcherXLSX) && !core.IsGCSPath(source) {
		if _, err := os.Stat(source); errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("input file %s not found", source)
		} else if err != nil {
			return err
		}
	}

	ctx := context.Background()
	fetcher, cleanup, err := newFetcher(ctx, cfg, kind, source)
	if err != nil {
		return err
	}
	defer cleanup()

	// 4. Generate
	slog.Info("Processing report", "name", cfg.Name, "source", source, "fetcher", kind, "variant", cfg.Variant)

	gc, err := core.NewGenerationContext(cfg, registry, fetcher, source, params)
	if err != nil {
		return err
	}
	res, err := core.NewGenerator(gc).Generate(ctx, cfg.Output.Dir)
	if err != nil {
		return fmt.Errorf("generate report %s: %w", cfg.Name, err)
	}
	files := res.Paths()
	slog.Info("Successfully generated", "name", cfg.Name, "blocks", res.Blocks, "files", files)

	if cfg.Output.Manifest != "" {
		path := gc.Expand(cfg.Output.Manifest)
		if !filepath.IsAbs(path) {
			path = filepath.Join(cfg.Output.Dir, path)
		}
		if err := core.WriteManifest(path, res); err != nil {
			return err
		}
		slog.Info("Manifest written", "path", path)
		files = append(files, path)
	}

	// 5. Upload to S3 if configured
	if cfg.Output.S3Bucket != "" {
		prefix := gc.Expand(cfg.Output.S3Prefix)
		slog.Info("Starting S3 upload", "bucket", cfg.Output.S3Bucket, "prefix", prefix)

		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return fmt.Errorf("unable to load AWS SDK config for S3: %w", err)
		}
		uploader := core.NewS3Uploader(awsCfg, cfg.Output.S3Bucket, prefix)
		keys, err := uploader.UploadFiles(ctx, files)
		if err != nil {
			return fmt.Errorf("failed to upload output to s3: %w", err)
		}
		slog.Info("Successfully uploaded to S3", "objects", len(keys))
	}

	return nil
}

// newRegistry holds the built-in variants, those in variantDir and those
// defined in the report configuration, later ones replacing earlier ones.
func newRegistry(cfg *config.ReportConfig, variantDir string) (*config.MemoryVariantRegistry, error) {
	var extra map[string]*config.VariantConfig
	if variantDir != "" {
		loaded, err := config.LoadVariantDir(variantDir)
		if err != nil {
			return nil, err
		}
		extra = loaded
	}
	registry := config.NewMemoryVariantRegistry(extra)
	for i := range cfg.Variants {
		registry.Register(&cfg.Variants[i])
	}
	return registry, nil
}

func printVariants(output io.Writer, configFile, variantDir string) error {
	cfg := config.DefaultReportConfig()
	if configFile != "" {
		loaded, err := config.LoadReportConfig(configFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	registry, err := newRegistry(cfg, variantDir)
	if err != nil {
		return err
	}

	for _, name := range registry.Names() {
		v, err := registry.GetVariantConfig(name)
		if err != nil {
			return err
		}
		layout := "no spacer row"
		if v.SpacerRow() {
			layout = "spacer row"
		}
		fmt.Fprintf(output, "%-10s %dx%d block, detail columns %s, %s\n",
			name, v.BlockWidth, v.BlockHeight, strings.Join(v.DetailLabels, "/"), layout)
	}
	return nil
}

// flagOverrides holds command-line values that replace configured ones.
// Zero values (and -1 for maxBlocks) leave the configuration alone.
type flagOverrides struct {
	variant       string
	fetcher       string
	dsn           string
	orderBy       string
	sheet         string
	filters       map[string]string
	blocksPerPage int
	colsPerRow    int
	maxBlocks     int
	strict        bool
	singleOnly    bool
	multiOnly     bool
	prefix        string
	manifest      string
	outputDir     string
	s3Bucket      string
	s3Prefix      string
}

func (o flagOverrides) apply(cfg *config.ReportConfig) {
	setString := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setString(&cfg.Variant, o.variant)
	setString(&cfg.Source.DSN, o.dsn)
	setString(&cfg.Source.OrderBy, o.orderBy)
	setString(&cfg.Source.Sheet, o.sheet)
	setString(&cfg.Output.Prefix, o.prefix)
	setString(&cfg.Output.Manifest, o.manifest)
	setString(&cfg.Output.Dir, o.outputDir)
	setString(&cfg.Output.S3Bucket, o.s3Bucket)
	setString(&cfg.Output.S3Prefix, o.s3Prefix)
	if o.fetcher != "" {
		cfg.Source.Fetcher = config.FetcherType(o.fetcher)
	}

	if len(o.filters) > 0 {
		if cfg.Filters == nil {
			cfg.Filters = make(map[string]string, len(o.filters))
		}
		for k, v := range o.filters {
			cfg.Filters[k] = v
		}
	}

	if o.blocksPerPage != 0 {
		cfg.Layout.BlocksPerPage = o.blocksPerPage
	}
	if o.colsPerRow != 0 {
		cfg.Layout.ColsPerRow = o.colsPerRow
	}
	if o.maxBlocks >= 0 {
		cfg.SingleSheet.MaxBlocks = o.maxBlocks
	}
	if o.strict {
		cfg.Strict = true
	}
	if o.singleOnly {
		cfg.SingleSheet.Enabled = true
		cfg.MultiSheet.Enabled = false
	}
	if o.multiOnly {
		cfg.MultiSheet.Enabled = true
		cfg.SingleSheet.Enabled = false
	}
}

var compressionExts = map[string]bool{".gz": true, ".bz2": true, ".xz": true, ".zip": true, ".z": true}

// resolveFetcher picks the fetcher from the source name unless one is configured.
func resolveFetcher(configured config.FetcherType, source string) config.FetcherType {
	if configured != config.FetcherAuto {
		return configured
	}
	ext := strings.ToLower(filepath.Ext(source))
	if compressionExts[ext] {
		ext = strings.ToLower(filepath.Ext(strings.TrimSuffix(source, filepath.Ext(source))))
	}
	if ext == ".xlsx" {
		return config.FetcherXLSX
	}
	return config.FetcherCSV
}

func newFetcher(ctx context.Context, cfg *config.ReportConfig, kind config.FetcherType, source string) (core.DataFetcher, func(), error) {
	noop := func() {}

	switch kind {
	case config.FetcherDynamoDB:
		slog.Info("Initializing DynamoDB Data Fetcher")
		// Load AWS Config (handles env vars, IAM roles, etc.)
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, noop, fmt.Errorf("unable to load AWS SDK config: %w", err)
		}
		return core.NewDynamoDBDataFetcher(awsCfg), noop, nil

	case config.FetcherMySQL, config.FetcherPostgres:
		slog.Info("Initializing SQL Data Fetcher", "type", kind)
		db, err := sql.Open(string(kind), cfg.Source.DSN)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to open db connection: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, noop, fmt.Errorf("failed to ping db: %w", err)
		}
		return core.NewSQLDataFetcher(db, string(kind), cfg.Source.OrderBy), func() { db.Close() }, nil

	case config.FetcherCSV, config.FetcherXLSX:
		var gcs *storage.Client
		cleanup := noop
		if core.IsGCSPath(source) {
			client, err := storage.NewClient(ctx)
			if err != nil {
				return nil, noop, fmt.Errorf("failed to create storage client: %w", err)
			}
			gcs = client
			cleanup = func() { client.Close() }
		}
		if kind == config.FetcherXLSX {
			slog.Info("Initializing XLSX Data Fetcher", "sheet", cfg.Source.Sheet)
			return core.NewXlsxDataFetcher(cfg.Source.Sheet, gcs), cleanup, nil
		}
		slog.Info("Initializing CSV Data Fetcher")
		return core.NewCsvDataFetcher("", gcs), cleanup, nil
	}

	return nil, noop, fmt.Errorf("invalid fetcher %q", kind)
}
