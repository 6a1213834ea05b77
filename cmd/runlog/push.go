// ABOUTME: CLI commands for pushing store tables to external collectors.
// ABOUTME: Supports an HTTP NDJSON/HEC endpoint and a Kafka topic.
package main

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/runlog/internal/sink"
	"github.com/harperreed/runlog/internal/storage"
	"github.com/spf13/cobra"
)

var (
	pushTables []string

	pushToken   string
	pushHEC     bool
	pushTimeout time.Duration

	pushBrokers []string
	pushTopic   string
)

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Push store tables to an external collector",
	Long: `Push the store to an external system, one batch per table.

Every event carries _source=<table> and _sourcetype=running_data so the
collector can tell runs, sleep, and the joined view apart. Empty tables are
skipped; a failed table does not stop the others.

SUBCOMMANDS:

  http <url>   POST NDJSON (or a Splunk HEC event array with --hec)
  kafka        Publish one message per row, keyed by table name

Defaults come from sink.http.* and sink.kafka.* in the config file.`,
}

var pushHTTPCmd = &cobra.Command{
	Use:   "http [url]",
	Short: "POST tables to an HTTP collector",
	Long: `POST each table to an HTTP collector.

EXAMPLES:

  runlog push http http://localhost:8088/ingest
  runlog push http https://splunk:8088/services/collector --hec --token $HEC_TOKEN`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hc := cfg.HTTPSink()
		if len(args) == 1 {
			hc.URL = args[0]
		}
		if pushToken != "" {
			hc.Token = pushToken
		}
		if pushHEC {
			hc.HEC = true
		}
		if pushTimeout > 0 {
			hc.Timeout = pushTimeout
		}

		s, err := sink.NewHTTP(hc)
		if err != nil {
			return err
		}
		return runPush(cmd, s)
	},
}

var pushKafkaCmd = &cobra.Command{
	Use:   "kafka",
	Short: "Publish rows to a Kafka topic",
	Long: `Publish every row as a Kafka message keyed by its table name.

EXAMPLES:

  runlog push kafka --brokers localhost:9092 --topic fitness`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		kc := cfg.KafkaSink()
		if len(pushBrokers) > 0 {
			kc.Brokers = pushBrokers
		}
		if pushTopic != "" {
			kc.Topic = pushTopic
		}

		s, err := sink.NewKafka(kc)
		if err != nil {
			return err
		}
		return runPush(cmd, s)
	},
}

func runPush(cmd *cobra.Command, s sink.Sink) error {
	defer s.Close()

	if err := checkTables(pushTables); err != nil {
		return err
	}
	results, err := sink.Push(cmd.Context(), repo, s, pushTables)
	printPushResults(cmd.OutOrStdout(), results)
	return err
}

func printPushResults(w io.Writer, results []sink.Result) {
	faint := color.New(color.Faint)
	for _, r := range results {
		switch {
		case r.Err != nil:
			fmt.Fprintf(w, "%s %s\n", color.RedString("✗"), r.Err)
		case r.Skipped:
			fmt.Fprintln(w, faint.Sprintf("- %s: empty, skipped", r.Table))
		default:
			fmt.Fprintln(w, color.GreenString("✓ Pushed %d event(s) from %s", r.Events, r.Table))
		}
	}
}

func init() {
	pushCmd.PersistentFlags().StringSliceVar(&pushTables, "tables", storage.Tables, "tables to push")

	pushHTTPCmd.Flags().StringVar(&pushToken, "token", "", "bearer token (HEC token with --hec)")
	pushHTTPCmd.Flags().BoolVar(&pushHEC, "hec", false, "send Splunk HEC event envelopes")
	pushHTTPCmd.Flags().DurationVar(&pushTimeout, "timeout", 0, "request timeout (default from config)")

	pushKafkaCmd.Flags().StringSliceVar(&pushBrokers, "brokers", nil, "broker addresses (host:port)")
	pushKafkaCmd.Flags().StringVar(&pushTopic, "topic", "", "destination topic")

	pushCmd.AddCommand(pushHTTPCmd)
	pushCmd.AddCommand(pushKafkaCmd)
	rootCmd.AddCommand(pushCmd)
}
