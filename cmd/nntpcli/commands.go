package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/hGPhillies/Project-NNTP-Niklas/internal/domain"
	"github.com/hGPhillies/Project-NNTP-Niklas/internal/infra/config"
	"github.com/spf13/cobra"
)

var errFailed = errors.New("operation failed")

// applyFlags overrides the server section with flags given on the command line.
func (c *cli) applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Server.Host = c.host
	}
	if flags.Changed("port") {
		cfg.Server.Port = c.port
	}
	if flags.Changed("user") {
		cfg.Server.Username = c.user
	}
	if flags.Changed("pass") {
		cfg.Server.Password = c.pass
	}
	if flags.Changed("timeout") {
		d, err := time.ParseDuration(c.timeout)
		if err != nil {
			return fmt.Errorf("invalid --timeout %q: %w", c.timeout, err)
		}
		cfg.Server.Timeout = d
	}
	return cfg.Validate()
}

func (c *cli) authCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Connect and run the AUTHINFO handshake",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res := c.app.Service.Authenticate(cmd.Context(), c.session())
			return c.print(cmd.OutOrStdout(), res)
		},
	}
}

func (c *cli) groupsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "groups",
		Short: "List the newsgroups carried by the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res := c.app.Service.ListGroups(cmd.Context(), c.session())
			return c.print(cmd.OutOrStdout(), res)
		},
	}
}

func (c *cli) listGroupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "listgroup <group>",
		Short: "List the article numbers in a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := c.app.Service.ListArticlesInGroup(cmd.Context(), c.session(), args[0])
			return c.print(cmd.OutOrStdout(), res)
		},
	}
}

func (c *cli) headCmd() *cobra.Command {
	var group string
	cmd := &cobra.Command{
		Use:   "head <article>",
		Short: "Fetch the headers of an article by number or message-id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := c.app.Service.GetHeaders(cmd.Context(), c.session(), args[0], group)
			return c.print(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVarP(&group, "group", "g", "", "select this group first")
	return cmd
}

func (c *cli) articleCmd() *cobra.Command {
	var group string
	cmd := &cobra.Command{
		Use:   "article <article>",
		Short: "Fetch a full article by number or message-id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := c.app.Service.GetArticle(cmd.Context(), c.session(), args[0], group)
			return c.print(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVarP(&group, "group", "g", "", "select this group first")
	return cmd
}

func (c *cli) historyCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently recorded operations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := c.app.Service.History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if c.jsonOut {
				return writeJSON(out, records)
			}
			for _, r := range records {
				status := "ok"
				if !r.Success {
					status = string(r.Kind)
				}
				fmt.Fprintf(out, "%s  %s  %-13s %s:%d  %-20s %s (%s)\n",
					r.ID, r.StartedAt.Format(time.RFC3339), r.Operation, r.Host, r.Port,
					r.Argument, status, r.Duration.Round(time.Millisecond))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of records to show")
	return cmd
}

func (c *cli) session() domain.Session {
	return c.app.Config.Session()
}

// print writes the result and turns a failed result into a non-zero exit.
func (c *cli) print(w io.Writer, res domain.Result) error {
	if c.jsonOut {
		if err := writeJSON(w, res); err != nil {
			return err
		}
	} else if res.Success {
		if len(res.Lines) == 0 {
			fmt.Fprintln(w, res.Message)
		}
		for _, line := range res.Lines {
			fmt.Fprintln(w, line)
		}
	}

	if !res.Success {
		return fmt.Errorf("%w: %s", errFailed, res.Message)
	}
	c.app.Logger.Debug("%s", res.Message)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
