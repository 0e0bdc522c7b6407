package cmd

import (
	"github.com/spf13/cobra"
	"github.com/wdgames/gameshelf/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the catalog, plan and editor over a JSON API",
	Long: `Serve the catalog, plan and admin editor over a JSON API. The server
loads the cached catalog on startup and holds all state in memory; plan
changes made through the API are not written back to the local cache.
Set --user and --pass to require basic auth.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		listen, _ := cmd.Flags().GetString("listen")
		user, _ := cmd.Flags().GetString("user")
		pass, _ := cmd.Flags().GetString("pass")
		refresh, _ := cmd.Flags().GetBool("refresh")

		s, err := openSession(cmd, refresh)
		if err != nil {
			return err
		}
		// The server keeps its own in-memory state from here on; release the
		// cache lock so CLI invocations still work while it runs.
		srv := server.New(s.store, s.plan, s.repo, s.sha, user, pass)
		s.Close()

		return srv.Start(listen)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("listen", ":8080", "Address to listen on")
	serveCmd.Flags().String("user", "", "Basic auth username")
	serveCmd.Flags().String("pass", "", "Basic auth password")
	serveCmd.Flags().BoolP("refresh", "r", false, "Fetch the latest catalog from the repository first")
}
