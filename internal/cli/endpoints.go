package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pendergraft/contraverify/internal/verification"
	"github.com/pendergraft/contraverify/internal/verification/backend"
)

func createEndpointsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "endpoints",
		Short: "List the submission URL of every verifier and network",
		Long: `List the submission URL each verifier uses on each network, after
applying base URL overrides from the environment and config files.

EXAMPLES:
  contraverify endpoints
  WALNUT_API_URL=http://localhost:8545 contraverify endpoints
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			project := loadProjectConfigSilent(cmd.ErrOrStderr())
			global := loadGlobalConfigSilent(cmd.ErrOrStderr())
			return printEndpoints(cmd.OutOrStdout(), resolveBaseURLs(cfg, project, global))
		},
	}
}

func printEndpoints(out io.Writer, overrides map[verification.Verifier]string) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VERIFIER\tNETWORK\tURL")
	for _, v := range verification.Verifiers() {
		for _, n := range verification.Networks() {
			b, err := backend.New(v, n, "", backend.Options{BaseURL: overrides[v]})
			if err != nil {
				return err
			}
			url, err := b.Endpoint()
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", v, n, url)
		}
	}
	return w.Flush()
}
