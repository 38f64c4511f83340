package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"repokit/domain/repository"
	"repokit/users/application"
)

func newSignupCmd(c *cli) *cobra.Command {
	var in application.SignupInput

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Register a new user",
		Long: `Signup creates a user. Name, email and password are required and the
email must not be registered yet.

Example:
  usersctl signup --name alice --email alice@example.com --password s3cret`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.stack.UseCases.Signup.Execute(cmd.Context(), in)
			if err != nil {
				return fmt.Errorf("signup: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), toView(out))
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "user name")
	cmd.Flags().StringVar(&in.Email, "email", "", "user email")
	cmd.Flags().StringVar(&in.Password, "password", "", "plain text password")
	return cmd
}

func newGetCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Retrieve a user by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.stack.UseCases.GetUser.Execute(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("get user %q: %w", args[0], err)
			}
			return printJSON(cmd.OutOrStdout(), toView(out))
		},
	}
}

func newListCmd(c *cli) *cobra.Command {
	var (
		page, perPage int
		sort, sortDir string
		filter        string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Search users with paging, sorting and filtering",
		Long: `List returns one page of users. Unknown sort fields fall back to the
default order (newest first); the filter matches names case-insensitively.

Example:
  usersctl list
  usersctl list --page 2 --per-page 5 --sort name --sort-dir asc
  usersctl list --filter ali`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := repository.SearchInput{Sort: sort, SortDir: sortDir, Filter: filter}
			// 未显式指定时交给 SearchParams 取默认值
			if cmd.Flags().Changed("page") {
				in.Page = page
			}
			if cmd.Flags().Changed("per-page") {
				in.PerPage = perPage
			}

			out, err := c.stack.UseCases.ListUsers.Execute(cmd.Context(), in)
			if err != nil {
				return fmt.Errorf("list users: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), toPageView(out))
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number (1-based)")
	cmd.Flags().IntVar(&perPage, "per-page", 0, "items per page (default from config)")
	cmd.Flags().StringVar(&sort, "sort", "", "sort field: name or createdAt")
	cmd.Flags().StringVar(&sortDir, "sort-dir", "", "sort direction: asc or desc")
	cmd.Flags().StringVar(&filter, "filter", "", "name filter")
	return cmd
}

func newUpdateCmd(c *cli) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Rename a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.stack.UseCases.UpdateUser.Execute(cmd.Context(), application.UpdateUserInput{ID: args[0], Name: name})
			if err != nil {
				return fmt.Errorf("update user %q: %w", args[0], err)
			}
			return printJSON(cmd.OutOrStdout(), toView(out))
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	return cmd
}

func newUpdatePasswordCmd(c *cli) *cobra.Command {
	var oldPassword, password string

	cmd := &cobra.Command{
		Use:   "update-password <id>",
		Short: "Change a user's password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.stack.UseCases.UpdatePassword.Execute(cmd.Context(), application.UpdatePasswordInput{
				ID:          args[0],
				OldPassword: oldPassword,
				Password:    password,
			})
			if err != nil {
				return fmt.Errorf("update password %q: %w", args[0], err)
			}
			return printJSON(cmd.OutOrStdout(), toView(out))
		},
	}
	cmd.Flags().StringVar(&oldPassword, "old", "", "current password")
	cmd.Flags().StringVar(&password, "new", "", "new password")
	return cmd
}

func newDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.stack.UseCases.DeleteUser.Execute(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("delete user %q: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted user %s\n", args[0])
			return nil
		},
	}
}
