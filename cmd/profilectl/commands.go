package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/janisto/profile-sync/internal/platform/config"
	"github.com/janisto/profile-sync/internal/screen"
	"github.com/janisto/profile-sync/internal/validation"
)

// errReported marks a failure whose details were already written to stderr.
var errReported = errors.New("profilectl: failure reported")

// cli carries the streams and the lazily opened app for one invocation.
type cli struct {
	stdout io.Writer
	stderr io.Writer
	app    *app
}

// execute runs profilectl with args and returns the process exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	c := &cli{stdout: stdout, stderr: stderr}
	root := c.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if closeErr := c.app.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err == nil {
		return 0
	}
	if !errors.Is(err, errReported) {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return 1
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "profilectl",
		Short:         "View and edit your profile",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.LoadClient()
			if err != nil {
				return err
			}
			c.app, err = openApp(cfg)
			return err
		},
	}
	root.AddCommand(
		c.showCmd(),
		c.listCmd(),
		c.createCmd(),
		c.editCmd(),
		c.deleteCmd(),
	)
	return root
}

func (c *cli) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the local profile, fetching it when nothing is cached",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			page := screen.NewProfilePage(c.app.container, c.app.cache, c.app.logger)
			defer page.Close()
			if err := page.Mount(cmd.Context()); err != nil {
				return err
			}
			view := page.View()
			c.printView(view)
			if view.Error != "" {
				fmt.Fprintf(c.stderr, "Error: %s\n", view.Error)
				if view.Source == screen.SourceNone {
					return errReported
				}
			}
			return nil
		},
	}
}

func (c *cli) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every profile on the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := c.app.container.FetchAll(cmd.Context())
			res, err := req.Wait(cmd.Context())
			if err != nil {
				return err
			}
			if res.Err != nil {
				fmt.Fprintf(c.stderr, "Error: %s\n", res.Err.Message)
				return errReported
			}
			tw := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tAGE")
			for _, p := range res.Profiles {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Email, p.Age)
			}
			return tw.Flush()
		},
	}
}

func (c *cli) createCmd() *cobra.Command {
	var name, email, age string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a profile and cache it locally",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			form := screen.NewProfileForm(c.app.container, c.app.cache, nil, c.app.logger)
			defer form.Close()
			for field, value := range map[string]string{
				validation.FieldName:  name,
				validation.FieldEmail: email,
				validation.FieldAge:   age,
			} {
				if err := form.Change(field, value); err != nil {
					return err
				}
			}
			return c.submit(cmd.Context(), form)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&age, "age", "", "age (optional)")
	return cmd
}

func (c *cli) editCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Update the named fields of an existing profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{"isEditing": {"true"}, "id": {args[0]}}
			form := screen.NewProfileForm(c.app.container, c.app.cache, query, c.app.logger)
			defer form.Close()
			if err := form.Mount(cmd.Context()); err != nil {
				return fmt.Errorf("load profile %s: %w", args[0], err)
			}
			for _, field := range []string{validation.FieldName, validation.FieldEmail, validation.FieldAge} {
				if !cmd.Flags().Changed(field) {
					continue
				}
				value, err := cmd.Flags().GetString(field)
				if err != nil {
					return err
				}
				if err := form.Change(field, value); err != nil {
					return err
				}
			}
			return c.submit(cmd.Context(), form)
		},
	}
	cmd.Flags().String("name", "", "new display name")
	cmd.Flags().String("email", "", "new email address")
	cmd.Flags().String("age", "", "new age, empty to clear")
	return cmd
}

func (c *cli) deleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Clear the locally cached profile",
		Long:  "Clear the locally cached profile. The record on the server is kept.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errors.New("refusing to clear the local profile without --yes")
			}
			page := screen.NewProfilePage(c.app.container, c.app.cache, c.app.logger)
			defer page.Close()
			if err := page.Delete(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(c.stdout, "Local profile cleared")
			if view := page.View(); view.Error != "" {
				fmt.Fprintf(c.stderr, "Warning: %s\n", view.Error)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm clearing the local profile")
	return cmd
}

// submit saves the form and reports the outcome. Violations are listed per field.
func (c *cli) submit(ctx context.Context, form *screen.ProfileForm) error {
	note, err := form.Submit(ctx)
	if errors.Is(err, screen.ErrInvalid) {
		violations := form.Errors()
		fmt.Fprintln(c.stderr, "Invalid profile:")
		for _, field := range violations.Fields() {
			fmt.Fprintf(c.stderr, "  %s: %s\n", field, violations[field])
		}
		return errReported
	}
	if err != nil {
		return err
	}
	if note.Severity == screen.SeverityError {
		fmt.Fprintf(c.stderr, "Error: %s\n", note.Message)
		return errReported
	}
	fmt.Fprintln(c.stdout, note.Message)
	return nil
}

func (c *cli) printView(v screen.PageView) {
	tw := tabwriter.NewWriter(c.stdout, 0, 4, 1, ' ', 0)
	fmt.Fprintf(tw, "Source:\t%s\n", v.Source)
	fmt.Fprintf(tw, "ID:\t%s\n", v.Profile.ID)
	fmt.Fprintf(tw, "Initial:\t%s\n", v.Initial)
	fmt.Fprintf(tw, "Name:\t%s\n", v.Profile.Name)
	fmt.Fprintf(tw, "Email:\t%s\n", v.Profile.Email)
	fmt.Fprintf(tw, "Age:\t%s\n", v.Profile.Age)
	_ = tw.Flush()
}
