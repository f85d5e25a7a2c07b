package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sanjiv-madhavan/dynamodb-table-purge/interfaces"
	"github.com/sanjiv-madhavan/dynamodb-table-purge/internal/ddb/client"
	"github.com/sanjiv-madhavan/dynamodb-table-purge/internal/ddb/config"
	"github.com/sanjiv-madhavan/dynamodb-table-purge/internal/ddb/constants"
	"github.com/sanjiv-madhavan/dynamodb-table-purge/internal/ddb/dispatcher"
	"github.com/sanjiv-madhavan/dynamodb-table-purge/internal/ddb/middleware"
	"github.com/sanjiv-madhavan/dynamodb-table-purge/internal/ddb/models"
	"github.com/sanjiv-madhavan/dynamodb-table-purge/internal/ddb/store"
)

type purgeFlags struct {
	configFile  string
	tables      []string
	profiles    []string
	region      string
	endpointUrl string
	pageSize    int32
	cacheSize   int
	maxParallel int
	maxPages    int
}

func main() {
	flags := &purgeFlags{}

	rootCmd := &cobra.Command{
		Use:   "ddbpurge",
		Short: "Bulk-delete every entity of one or more DynamoDB tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPurge(cmd, flags)
		},
		SilenceUsage: true,
	}

	rootCmd.Flags().StringVar(&flags.configFile, "config", "", "YAML config file listing accounts and tables")
	rootCmd.Flags().StringSliceVar(&flags.tables, "table", nil, "table to purge (repeatable)")
	rootCmd.Flags().StringSliceVar(&flags.profiles, "profile", nil, "AWS profile to purge against (repeatable)")
	rootCmd.Flags().StringVar(&flags.region, "region", "", "AWS region for flag-defined accounts")
	rootCmd.Flags().StringVar(&flags.endpointUrl, "endpoint-url", "", "endpoint override, e.g. a local DynamoDB")
	rootCmd.Flags().Int32Var(&flags.pageSize, "page-size", constants.DefaultPageSize, "results per scan page, 0 for service default")
	rootCmd.Flags().IntVar(&flags.cacheSize, "cache-size", constants.DefaultCacheSize, "max pending delete operations per pipeline")
	rootCmd.Flags().IntVar(&flags.maxParallel, "max-parallel", 0, "max concurrent pipelines, 0 for unlimited")
	rootCmd.Flags().IntVar(&flags.maxPages, "max-pages", 0, "stop each table after N pages, 0 for unlimited")
	_ = rootCmd.Flags().MarkHidden("max-pages")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runPurge(cmd *cobra.Command, flags *purgeFlags) error {
	mw := middleware.NewMiddleware()
	ctx := context.WithValue(cmd.Context(), constants.CliRequestId, uuid.NewString())

	cfg, err := buildConfig(cmd, flags)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	job := cfg.Job()
	job.MaxPages = flags.maxPages

	// Every client is built before any deletion starts; an unusable client
	// configuration means nothing gets attempted.
	stores := make(map[string]interfaces.TableStore, len(job.Accounts))
	for _, account := range job.Accounts {
		ddbClient, err := client.NewDynamoDBClient(ctx, account)
		if err != nil {
			mw.LogError("DynamoDB client unavailable", err)
			os.Exit(constants.ExitClientUnavailable)
		}
		stores[account.Name] = store.NewTableStore(ddbClient)
	}

	mw.LogHandler(ctx, "Purge run starting",
		"accounts", len(job.Accounts),
		"tables", len(job.Tables),
		"page-size", job.PageSize,
		"cache-size", job.CacheSize)

	started := time.Now()
	total, runErr := dispatcher.NewJobDispatcher(stores, mw).Run(ctx, job)
	if runErr != nil {
		mw.LogError("Some pipeline units failed", runErr)
	}

	mw.LogHandler(ctx, "Purge Summary Report",
		"TotalDeletedItems", total.TotalCount,
		"TotalErroredItems", total.ErrorCount,
		"Elapsed", time.Since(started).String())

	// Per-entity errors and unit failures are already reported above; the
	// run still completed, so the process exits zero.
	return nil
}

func buildConfig(cmd *cobra.Command, flags *purgeFlags) (*config.Config, error) {
	cfg := config.New()
	if flags.configFile != "" {
		loaded, err := config.Load(flags.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	cfg.Tables = append(cfg.Tables, flags.tables...)
	for _, profile := range flags.profiles {
		cfg.Accounts = append(cfg.Accounts, models.Account{
			Name:        profile,
			Profile:     profile,
			Region:      flags.region,
			EndpointUrl: flags.endpointUrl,
		})
	}
	if len(cfg.Accounts) == 0 && (flags.region != "" || flags.endpointUrl != "") {
		cfg.Accounts = append(cfg.Accounts, models.Account{
			Name:        "default",
			Region:      flags.region,
			EndpointUrl: flags.endpointUrl,
		})
	}

	if cmd.Flags().Changed("page-size") {
		cfg.PageSize = flags.pageSize
	}
	if cmd.Flags().Changed("cache-size") {
		cfg.CacheSize = flags.cacheSize
	}
	if cmd.Flags().Changed("max-parallel") {
		cfg.MaxParallel = flags.maxParallel
	}
	return cfg, nil
}
