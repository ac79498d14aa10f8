package loadgen

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/minwonhaeso/esc-server/internal/tools/common"
)

type options struct {
	baseURL     string
	profile     string
	duration    time.Duration
	rps         int
	concurrency int
	seed        int64
	ci          bool
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{Use: "loadgen", Short: "Generate API traffic against a running server"}
	cmd.PersistentFlags().StringVar(&opts.baseURL, "base-url", "http://localhost:8080", "API base URL")
	cmd.PersistentFlags().StringVar(&opts.profile, "profile", "mixed", "traffic profile: browse|auth|mixed|error-heavy")
	cmd.PersistentFlags().DurationVar(&opts.duration, "duration", 15*time.Second, "traffic duration")
	cmd.PersistentFlags().IntVar(&opts.rps, "rps", 20, "requests per second")
	cmd.PersistentFlags().IntVar(&opts.concurrency, "concurrency", 6, "concurrent workers")
	cmd.PersistentFlags().Int64Var(&opts.seed, "seed", 42, "random seed")
	cmd.PersistentFlags().BoolVar(&opts.ci, "ci", false, "non-interactive machine-readable output")
	cmd.AddCommand(newRunCommand(opts))
	return cmd
}

func newRunCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run load generation",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := common.Run("loadgen", "run", opts.ci, opts.duration+15*time.Second, func(ctx context.Context) ([]string, error) {
				res, err := Run(ctx, Config{
					BaseURL:     opts.baseURL,
					Profile:     opts.profile,
					Duration:    opts.duration,
					RPS:         opts.rps,
					Concurrency: opts.concurrency,
					Seed:        opts.seed,
				})
				if err != nil {
					return nil, err
				}
				return summarize(res), nil
			})
			if err != nil {
				os.Exit(4)
			}
			return nil
		},
	}
}

func summarize(res Result) []string {
	return []string{
		fmt.Sprintf("total_requests=%d", res.TotalRequests),
		fmt.Sprintf("failures=%d", res.Failures),
		fmt.Sprintf("status_2xx=%d", res.Status2xx),
		fmt.Sprintf("status_4xx=%d", res.Status4xx),
		fmt.Sprintf("status_5xx=%d", res.Status5xx),
	}
}
