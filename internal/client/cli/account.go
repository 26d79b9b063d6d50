package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/mailrelay/internal/common"
)

// promptIfEmpty returns v, or asks for it when empty.
func (a *App) promptIfEmpty(v, prompt string) (string, error) {
	if v != "" {
		return v, nil
	}
	return getSimpleText(a.reader, prompt, a.out)
}

func (a *App) newRegisterCmd() *cobra.Command {
	var userName, email string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a relay account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userName, err := a.promptIfEmpty(userName, "Enter username")
			if err != nil {
				return err
			}
			email, err := a.promptIfEmpty(email, "Enter email")
			if err != nil {
				return err
			}

			password, err := getPassword(a.out, "Enter password")
			if err != nil {
				return err
			}
			defer common.WipeByteArray(password)

			u, err := a.client.Register(cmd.Context(), userName, email, password)
			if err != nil {
				return err
			}
			return printJSON(a.out, u)
		},
	}
	cmd.Flags().StringVarP(&userName, "username", "u", "", "user name")
	cmd.Flags().StringVarP(&email, "email", "e", "", "email address")
	return cmd
}

// login prints only the token on stdout so it can be captured by a shell.
func (a *App) newLoginCmd() *cobra.Command {
	var userName string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and print a session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userName, err := a.promptIfEmpty(userName, "Enter username")
			if err != nil {
				return err
			}

			password, err := getPassword(cmd.ErrOrStderr(), "Enter password")
			if err != nil {
				return err
			}
			defer common.WipeByteArray(password)

			token, err := a.client.Login(cmd.Context(), userName, password)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.out, token)
			return err
		},
	}
	cmd.Flags().StringVarP(&userName, "username", "u", "", "user name")
	return cmd
}

func (a *App) newMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the logged in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u, err := a.client.Me(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(a.out, u)
		},
	}
}

func (a *App) newProviderTokenCmd() *cobra.Command {
	var clearToken bool

	cmd := &cobra.Command{
		Use:   "provider-token",
		Short: "Store the mail.tm token the relay uses for this account",
		Long: `provider-token reads a mail.tm bearer token without echo and stores
it for the logged in account. --clear removes it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if clearToken {
				return a.client.SetProviderToken(cmd.Context(), "")
			}

			token, err := getPassword(a.out, "Enter mail.tm token")
			if err != nil {
				return err
			}
			defer common.WipeByteArray(token)

			if err := a.client.SetProviderToken(cmd.Context(), string(token)); err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.out, "Provider token stored")
			return err
		},
	}
	cmd.Flags().BoolVar(&clearToken, "clear", false, "remove the stored token")
	return cmd
}
