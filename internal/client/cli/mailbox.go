package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/mailrelay/internal/mailtm"
)

func (a *App) newCreateAddressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create-address <address>",
		Short: "Create a provider mailbox",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := a.client.CreateAddress(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(a.out, addr)
		},
	}
}

func (a *App) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [folder]",
		Short: "List the first page of a folder (default inbox)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			folder := "inbox"
			if len(args) == 1 {
				folder = args[0]
			}

			msgs, err := a.client.ListMessages(cmd.Context(), folder)
			if err != nil {
				return err
			}
			return printMessages(a.out, msgs)
		},
	}
}

func (a *App) newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := a.client.GetMessage(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(a.out, msg)
		},
	}
}

func (a *App) newSendCmd() *cobra.Command {
	var to, subject, body string

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a message",
		Long:  "send posts a message. Without --body the text is read interactively.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if body == "" {
				var err error
				if body, err = GetMultiline(a.reader, "Enter message body", a.out); err != nil {
					return err
				}
			}

			msg, err := a.client.SendMessage(cmd.Context(), to, subject, body)
			if err != nil {
				return err
			}
			return printJSON(a.out, msg)
		},
	}
	cmd.Flags().StringVarP(&to, "to", "t", "", "recipient address")
	cmd.Flags().StringVarP(&subject, "subject", "s", "", "subject line")
	cmd.Flags().StringVarP(&body, "body", "b", "", "message text")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func (a *App) newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deleted, err := a.client.DeleteMessage(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !deleted {
				return fmt.Errorf("provider did not confirm deletion of %s", args[0])
			}
			_, err = fmt.Fprintf(a.out, "Deleted %s\n", args[0])
			return err
		},
	}
}

func (a *App) newDomainsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "domains",
		Short: "List provider domains",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ds, err := a.client.ListDomains(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tDOMAIN\tACTIVE")
			for _, d := range ds {
				fmt.Fprintf(tw, "%s\t%s\t%t\n", d.ID, d.Domain, d.IsActive)
			}
			return tw.Flush()
		},
	}
}

func printMessages(w io.Writer, msgs []mailtm.Message) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFROM\tSUBJECT\tSEEN")
	for _, m := range msgs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\n", m.ID, m.From, m.Subject, m.Seen)
	}
	return tw.Flush()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
