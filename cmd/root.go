package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"rug/internal/config"
	"rug/internal/neutron"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeConfigInvalid indicates config.yaml could not be loaded or failed validation.
	ExitCodeConfigInvalid = 2
	// ExitCodeAuthFailed indicates the network service rejected the credentials.
	ExitCodeAuthFailed = 3
)

// rootCmd represents the base command for the rug application.
var rootCmd = &cobra.Command{
	Use:   "rug",
	Short: "Keep service routers in sync with the network service",
	Long: `rug watches router notifications from the network-management service
and dispatches them, per tenant, to a pool of workers. On startup it lists
every router and queues a poll for each so the fleet is reconciled even
before the first notification arrives.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// This function is called by main.main().
func Execute() {
	if code := execute(os.Args[1:], os.Stderr); code != ExitCodeSuccess {
		os.Exit(code)
	}
}

// execute runs the command tree with args and maps the outcome to an exit
// code. Configuration failures also get the full report on stderr.
func execute(args []string, stderr io.Writer) int {
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	if err == nil {
		return ExitCodeSuccess
	}

	code := getExitCode(err)
	if code == ExitCodeConfigInvalid {
		reportConfigErrors(stderr, err)
	}
	return code
}

func reportConfigErrors(w io.Writer, err error) {
	var configErrs config.ConfigurationErrorCollection
	if errors.As(err, &configErrs) {
		fmt.Fprintln(w, configErrs.GetDetailedReport())
		return
	}

	var configErr config.ConfigurationError
	if errors.As(err, &configErr) {
		fmt.Fprintln(w, configErr.DetailedError())
	}
}

// getExitCode determines the appropriate exit code based on the error type.
func getExitCode(err error) int {
	if neutron.IsAuthError(err) {
		return ExitCodeAuthFailed
	}

	var configErrs config.ConfigurationErrorCollection
	if errors.As(err, &configErrs) {
		return ExitCodeConfigInvalid
	}

	var configErr config.ConfigurationError
	if errors.As(err, &configErr) {
		return ExitCodeConfigInvalid
	}

	return ExitCodeError
}

func init() {
	rootCmd.SetVersionTemplate(`{{printf "rug version %s\n" .Version}}`)
	rootCmd.AddCommand(newVersionCmd())
}
