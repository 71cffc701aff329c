package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"forum-geni/pkg/rbac"
)

// newCheckAccessCmd creates a new command for checking admin route access
func newCheckAccessCmd() *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:   "check-access [path...]",
		Short: "Check which admin routes a role may open",
		Long: `Print the access decision of a role for each path. Without paths the whole
route permission table is checked.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, ok := rbac.ParseRole(role)
			if !ok {
				return fmt.Errorf("unknown role %q, expected one of %v", role, rbac.Roles())
			}

			paths := args
			if len(paths) == 0 {
				for _, rule := range rbac.RoutePermissions() {
					paths = append(paths, rule.Path)
				}
			}
			checkAccess(cmd.OutOrStdout(), parsed, paths)
			return nil
		},
	}

	cmd.Flags().StringVarP(&role, "role", "r", string(rbac.RoleViewer), "Role to check")

	return cmd
}

// checkAccess prints one decision per path
func checkAccess(w io.Writer, role rbac.Role, paths []string) {
	fmt.Fprintf(w, "Role: %s\n", role.Label())
	fmt.Fprintln(w, "================")

	for _, path := range paths {
		decision := rbac.CanAccessRoute(role, path)
		status := "allowed"
		if !decision.Allowed {
			status = "denied"
		}
		fmt.Fprintf(w, "%-28s %-8s requires %s\n", path, status, decision.RequiredRole)
	}
}
