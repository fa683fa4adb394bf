package cmd

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aqlanhadi/tally/ledger"
	"github.com/aqlanhadi/tally/reconcile"
	"github.com/aqlanhadi/tally/source"
)

// Embedded default configuration
const defaultConfigYAML = `
counterparties:
  supplier:
    fulfilled_statuses: [received, partially received]
    draft_statuses: [draft]
    include_unfulfilled: true
  client:
    fulfilled_statuses: [invoiced, partially invoiced, paid, completed]
    draft_statuses: [draft]
    include_unfulfilled: true
source:
  # null leaves undated records undated; now stamps them with the current time
  missing_date: "null"
  # extra upstream field names, tried before the built-in ones
  fields:
    order: {}
    return: {}
    payment: {}
    line: {}
database:
  url: ""
  max_conns: 0
server:
  port: "8080"
  request_timeout: 30s
  max_body_bytes: 10485760`

var (
	cfgFile string
	verbose bool
	rootCmd = &cobra.Command{
		Use:   "tally [snapshot]",
		Short: "Reconcile counterparty ledgers and value returns",
		Long: `tally merges orders, returns and payments for a supplier or client into a
date-ordered ledger with a running balance, and prices returns from the
lines of the original order.`,
		Args: cobra.ArbitraryArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) == 1 {
				statementFile = args[0]
				runStatement(statementCmd, nil)
				return
			}
			cmd.Help()
		},
	}
)

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initLogging)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default is ./.tally.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().String("db-url", "", "PostgreSQL connection URL (or set DATABASE_URL env)")
	viper.BindPFlag("database.url", rootCmd.PersistentFlags().Lookup("db-url"))
}

func initLogging() {
	if !verbose {
		log.SetOutput(io.Discard)
	} else {
		log.SetFlags(log.Ltime | log.Lmsgprefix)
		log.SetPrefix("INFO: ")
	}
}

func initConfig() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	viper.SetConfigType("yaml")
	if err := viper.ReadConfig(bytes.NewBufferString(defaultConfigYAML)); err != nil {
		fmt.Printf("Error loading embedded configuration: %v\n", err)
		os.Exit(1)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(".")
		viper.AddConfigPath(home)
		viper.SetConfigName(".tally")
	}

	viper.SetEnvPrefix("TALLY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	viper.BindEnv("database.url", "TALLY_DATABASE_URL", "DATABASE_URL")

	if err := viper.MergeInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Printf("Error reading config file: %v\n", err)
			os.Exit(1)
		}
	}
}

// counterpartyOptions reads the classification rules of one counterparty type.
func counterpartyOptions(name string, fallback ledger.Options) ledger.Options {
	key := "counterparties." + name
	if !viper.IsSet(key) {
		return fallback
	}
	opts := ledger.Options{
		FulfilledStatuses:  viper.GetStringSlice(key + ".fulfilled_statuses"),
		DraftStatuses:      viper.GetStringSlice(key + ".draft_statuses"),
		IncludeUnfulfilled: viper.GetBool(key + ".include_unfulfilled"),
	}
	if len(opts.FulfilledStatuses) == 0 {
		opts.FulfilledStatuses = fallback.FulfilledStatuses
	}
	if len(opts.DraftStatuses) == 0 {
		opts.DraftStatuses = fallback.DraftStatuses
	}
	return opts
}

func loadReconcileConfig() reconcile.Config {
	return reconcile.Config{
		Supplier: counterpartyOptions(reconcile.Supplier, ledger.SupplierOptions()),
		Client:   counterpartyOptions(reconcile.Client, ledger.ClientOptions()),
	}
}

// fieldAliases flattens source.fields.<kind>.<field> into "<kind>.<field>" keys.
func fieldAliases() map[string][]string {
	out := make(map[string][]string)
	for kind := range viper.GetStringMap("source.fields") {
		for field := range viper.GetStringMap("source.fields." + kind) {
			key := kind + "." + field
			if aliases := viper.GetStringSlice("source.fields." + key); len(aliases) > 0 {
				out[key] = aliases
			}
		}
	}
	return out
}

func newNormalizer() *source.Normalizer {
	policy := strings.ToLower(strings.TrimSpace(viper.GetString("source.missing_date")))
	if policy != source.MissingDateNow {
		policy = source.MissingDateNull
	}
	return source.NewNormalizer(
		source.WithAliases(source.MergeAliases(source.DefaultAliases(), fieldAliases())),
		source.WithMissingDate(policy),
	)
}

func newService() *reconcile.Service {
	return reconcile.New(loadReconcileConfig())
}
