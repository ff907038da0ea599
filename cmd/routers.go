package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"rug/internal/config"
	"rug/internal/neutron"
	"rug/pkg/logging"
	rugstrings "rug/pkg/strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

var (
	routersTenant     string
	routersConfigPath string
)

// routersCmd lists what the bootstrap would poll.
var routersCmd = &cobra.Command{
	Use:   "routers",
	Short: "List the routers known to the network service",
	Long: `Lists routers exactly as the startup bootstrap sees them, using the
credentials from config.yaml. Use --tenant to restrict the listing to a
single tenant.`,
	Args: cobra.NoArgs,
	RunE: runRouters,
}

func runRouters(cmd *cobra.Command, args []string) error {
	logging.Init(logging.LevelWarn, logging.FormatText, cmd.ErrOrStderr())

	cfg, err := config.LoadConfig(routersConfigPath)
	if err != nil {
		return err
	}
	if strings.TrimSpace(cfg.Neutron.AuthURL) == "" {
		var errs config.ConfigurationErrorCollection
		errs.AddFieldError("neutron.authURL", "is required")
		return errs
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	dir := neutron.NewDirectory(neutron.AuthConfig{
		AuthURL:     cfg.Neutron.AuthURL,
		Username:    cfg.Neutron.Username,
		Password:    cfg.Neutron.Password,
		ProjectName: cfg.Neutron.ProjectName,
		DomainName:  cfg.Neutron.DomainName,
		Region:      cfg.Neutron.Region,
	})

	var found []neutron.Router
	if routersTenant != "" {
		found, err = dir.ListTenantRouters(ctx, routersTenant)
	} else {
		found, err = dir.ListRouters(ctx)
	}
	if err != nil {
		return err
	}

	renderRouters(cmd.OutOrStdout(), found)
	return nil
}

// renderRouters writes routers as a table in listing order.
func renderRouters(w io.Writer, routers []neutron.Router) {
	if len(routers) == 0 {
		fmt.Fprintln(w, text.FgYellow.Sprint("No routers found"))
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"TENANT", "ROUTER", "NAME", "STATUS", "ADMIN UP"})

	for _, r := range routers {
		tenant := r.TenantID
		if tenant == "" {
			tenant = text.FgRed.Sprint("<none>")
		}
		t.AppendRow(table.Row{tenant, r.ID, rugstrings.Truncate(r.Name, rugstrings.ColumnLen), r.Status, r.AdminStateUp})
	}
	t.AppendFooter(table.Row{"", "", "", "Total", len(routers)})
	t.Render()
}

func init() {
	rootCmd.AddCommand(routersCmd)

	routersCmd.Flags().StringVar(&routersTenant, "tenant", "", "Only list routers owned by this tenant")
	routersCmd.Flags().StringVar(&routersConfigPath, "config-path", config.GetDefaultConfigPathOrPanic(), "Configuration directory containing config.yaml")
}
