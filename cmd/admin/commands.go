package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"pitchside/internal/auth"
	"pitchside/internal/bootstrap"
	"pitchside/internal/config"
	"pitchside/internal/models"
	"pitchside/internal/repository"
	"pitchside/internal/sweeper"
	"pitchside/internal/validation"

	"github.com/spf13/cobra"
)

// cli carries the dependencies shared by every subcommand. Tests fill users and sweeper
// directly, which skips the runtime setup.
type cli struct {
	out     io.Writer
	rt      *bootstrap.Runtime
	users   repository.UserRepository
	sweeper *sweeper.Sweeper
}

func (c *cli) connect(cmd *cobra.Command, _ []string) error {
	if c.users != nil {
		return nil
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	rt, err := bootstrap.InitRuntime(cmd.Context(), cfg, bootstrap.Options{})
	if err != nil {
		return err
	}
	c.rt = rt
	c.users = repository.NewUserRepository(rt.DB, rt.Cache)

	swCfg, err := sweeper.ConfigFrom(cfg)
	if err != nil {
		return err
	}
	c.sweeper, err = sweeper.New(repository.NewSweepRepository(rt.DB), nil, swCfg)
	return err
}

func (c *cli) close(_ *cobra.Command, _ []string) error {
	if c.rt == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.rt.Close(ctx)
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:                "pitchside-admin",
		Short:              "Manage Pitchside dashboard accounts",
		SilenceUsage:       true,
		PersistentPreRunE:  c.connect,
		PersistentPostRunE: c.close,
	}
	root.SetOut(c.out)
	root.SetErr(c.out)
	root.AddCommand(
		newCreateAdminCmd(c),
		newSetRoleCmd(c),
		newListUsersCmd(c),
		newSweepCmd(c),
	)
	return root
}

func newCreateAdminCmd(c *cli) *cobra.Command {
	var email, password, name string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			email = strings.ToLower(strings.TrimSpace(email))
			if err := validation.GetValidator().Var(email, "required,email"); err != nil {
				return fmt.Errorf("invalid email %q", email)
			}
			if err := validation.ValidatePassword(password); err != nil {
				return fmt.Errorf("password: %w", err)
			}

			existing, err := c.users.GetByEmail(cmd.Context(), email)
			if err != nil {
				return err
			}
			if existing != nil {
				return fmt.Errorf("user %s already exists", email)
			}

			hashed, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			user := &models.User{Email: email, Password: hashed, Name: name, Role: models.RoleAdmin}
			if err := c.users.Create(cmd.Context(), user); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (id %d)\n", user.Email, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newSetRoleCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "set-role <email> <admin|moderator>",
		Short: "Change the role of an existing account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			role := models.Role(strings.ToLower(args[1]))
			if !role.Valid() {
				return fmt.Errorf("unknown role %q", args[1])
			}

			user, err := c.users.GetByEmail(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if user == nil {
				return fmt.Errorf("no user with email %s", args[0])
			}
			if user.Role == models.RoleAdmin && role != models.RoleAdmin {
				admins, err := c.users.CountByRole(cmd.Context(), models.RoleAdmin)
				if err != nil {
					return err
				}
				if admins <= 1 {
					return errors.New("refusing to demote the last admin")
				}
			}

			user.Role = role
			if err := c.users.Update(cmd.Context(), user); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", user.Email, role)
			return nil
		},
	}
}

func newListUsersCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "list-users",
		Short: "List dashboard accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			users, err := c.users.List(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tEMAIL\tROLE\tLAST ACTIVE")
			for _, u := range users {
				last := "-"
				if u.LastActive != nil {
					last = u.LastActive.UTC().Format(time.RFC3339)
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", u.ID, u.Email, u.Role, last)
			}
			return w.Flush()
		},
	}
}

func newSweepCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Run every expiry job once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var failed bool
			for _, st := range c.sweeper.RunOnce(cmd.Context()) {
				if st.LastError != "" {
					failed = true
					fmt.Fprintf(cmd.OutOrStdout(), "%s: error: %s\n", st.Name, st.LastError)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d affected\n", st.Name, st.LastAffected)
			}
			if failed {
				return errors.New("one or more sweeps failed")
			}
			return nil
		},
	}
}
