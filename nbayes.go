package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"nbayes/pkg"
	"nbayes/pkg/io"
	"nbayes/pkg/model"
)

func addDataFlags(cmd *cobra.Command, p *pkg.Parameters) {
	cmd.Flags().StringVarP(&p.BucketPrefix, "bucket-prefix", "p", "", "prefix of the bucket files, bucket i is read from <prefix>-<ii>")
	cmd.Flags().IntVarP(&p.NumBuckets, "num-buckets", "n", model.DefaultNumBuckets, "number of buckets")
	cmd.Flags().StringVarP(&p.Format, "format", "f", "", "kind of every column: class, attr, num or comment")
	cmd.Flags().StringVarP(&p.Separator, "separator", "s", "tab", "column separator: tab, comma, space or a single character")
	cmd.Flags().IntVarP(&p.Workers, "workers", "w", 1, "number of buckets parsed concurrently")

	_ = cmd.MarkFlagRequired("bucket-prefix")
	_ = cmd.MarkFlagRequired("format")
}

func TestCommand() *cobra.Command {
	var p pkg.Parameters
	var outputFile string

	var cmd = &cobra.Command{
		Use:   "test -p bucketPrefix -f format -t testBucket [-o outputFile]",
		Short: "Trains on all buckets but the test bucket and reports the confusion matrix of the test bucket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tally, err := pkg.Test(cmd.Context(), p, outputFile)
			if err != nil {
				return err
			}
			pkg.Report(cmd.OutOrStdout(), tally)
			return nil
		},
	}

	addDataFlags(cmd, &p)
	cmd.Flags().IntVarP(&p.TestBucket, "test-bucket", "t", 0, "index of the held out bucket")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "name of output file for the predictions (optional)")

	return cmd
}

func CrossValidateCommand() *cobra.Command {
	var p pkg.Parameters

	var cmd = &cobra.Command{
		Use:   "crossvalidate -p bucketPrefix -f format",
		Short: "Holds out every bucket in turn and reports the merged confusion matrix",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tally, err := pkg.CrossValidate(cmd.Context(), p)
			if err != nil {
				return err
			}
			pkg.Report(cmd.OutOrStdout(), tally)
			return nil
		},
	}

	addDataFlags(cmd, &p)
	return cmd
}

func ClassifyCommand() *cobra.Command {
	var p pkg.Parameters
	var categorical []string
	var continuous []float64

	var cmd = &cobra.Command{
		Use:   "classify -p bucketPrefix -f format [--attr a,b] [--num 1.0,2.0]",
		Short: "Trains on the buckets and classifies a single instance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			label, err := pkg.Classify(cmd.Context(), p, categorical, continuous)
			if err != nil {
				return err
			}
			if label == model.Unclassified {
				fmt.Fprintln(cmd.OutOrStdout(), "(none)")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), label)
			return nil
		},
	}

	addDataFlags(cmd, &p)
	cmd.Flags().IntVarP(&p.TestBucket, "test-bucket", "t", model.NoTestBucket, "index of a bucket to leave out of training, -1 uses all buckets")
	cmd.Flags().StringSliceVarP(&categorical, "attr", "a", nil, "categorical attributes in column order")
	cmd.Flags().Float64SliceVarP(&continuous, "num", "", nil, "continuous attributes in column order")

	return cmd
}

func BucketizeCommand() *cobra.Command {
	var p io.BucketizeParameters
	var separator string

	var cmd = &cobra.Command{
		Use:   "bucketize -i dataFile -p bucketPrefix [-n numBuckets] [-c classColumn]",
		Short: "Splits a data file into buckets stratified by class",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if p.Separator, err = io.ParseSeparator(separator); err != nil {
				return err
			}
			sizes, err := io.Bucketize(p)
			if err != nil {
				return err
			}
			for i, size := range sizes {
				log.Info().Str("File", model.BucketIdentifier(p.BucketPrefix, i)).Int("Rows", size).Msg("Wrote bucket")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&p.InputFile, "input", "i", "", "name of the data file")
	cmd.Flags().StringVarP(&p.BucketPrefix, "bucket-prefix", "p", "", "prefix of the bucket files to write")
	cmd.Flags().IntVarP(&p.NumBuckets, "num-buckets", "n", model.DefaultNumBuckets, "number of buckets")
	cmd.Flags().IntVarP(&p.ClassColumn, "class-column", "c", -1, "column holding the class, used to stratify buckets (-1 disables)")
	cmd.Flags().StringVarP(&separator, "separator", "s", "tab", "column separator: tab, comma, space or a single character")
	cmd.Flags().Int64VarP(&p.RndSeed, "random-seed", "x", 42, "random seed")

	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("bucket-prefix")

	return cmd
}

var logLevel string
var logFormat string

func main() {
	Main := &cobra.Command{Use: "nbayes", PersistentPreRunE: setupLogging, SilenceUsage: true}

	Main.PersistentFlags().StringVarP(&logLevel, "log-level", "", "info", "Logging level: debug, info, warn or error")
	Main.PersistentFlags().StringVarP(&logFormat, "log-format", "", "pretty", "Logging format: pretty or json")

	Main.AddCommand(TestCommand())
	Main.AddCommand(CrossValidateCommand())
	Main.AddCommand(ClassifyCommand())
	Main.AddCommand(BucketizeCommand())

	if err := Main.Execute(); err != nil {
		os.Exit(1)
	}
}

// setupLogging applies --log-level and --log-format before any subcommand runs.
func setupLogging(cmd *cobra.Command, args []string) error {
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil || level == zerolog.NoLevel {
		return fmt.Errorf("invalid log level %q", logLevel)
	}
	zerolog.SetGlobalLevel(level)

	switch logFormat {
	case "pretty":
		log.Logger = log.Output(prettyWriter())
	case "json":
	default:
		return fmt.Errorf("invalid log format %q", logFormat)
	}
	return nil
}

// prettyWriter prints floating point fields with three decimals, which keeps
// probabilities and metrics readable.
func prettyWriter() zerolog.ConsoleWriter {
	writer := zerolog.ConsoleWriter{Out: os.Stderr}
	writer.FormatFieldValue = func(i interface{}) string {
		if v, ok := i.(json.Number); ok {
			if val, err := v.Float64(); err == nil {
				return fmt.Sprintf("%.3f", val)
			}
		}
		return fmt.Sprintf("%s", i)
	}
	return writer
}
