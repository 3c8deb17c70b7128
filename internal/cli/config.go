package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sadopc/shiftr/internal/client"
	"github.com/sadopc/shiftr/internal/store"
)

var settingKeys = []string{store.KeyEndpoint, store.KeyToken, store.KeyReportPrefix}

func checkKey(k string) error {
	if !slices.Contains(settingKeys, k) {
		return fmt.Errorf("unknown setting %q (one of %s)", k, strings.Join(settingKeys, ", "))
	}
	return nil
}

func configCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change settings",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Show all settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(); err != nil {
				return err
			}
			settings, err := a.store.GetAllSettings()
			if err != nil {
				return err
			}
			for _, s := range settings {
				v := s.Value
				if s.Key == store.KeyToken && v != "" {
					v = "(set)"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-14s %s\n", s.Key, v)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Print one setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkKey(args[0]); err != nil {
				return err
			}
			if err := a.open(); err != nil {
				return err
			}
			v, err := a.store.GetSetting(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], strings.TrimSpace(args[1])
			if err := checkKey(key); err != nil {
				return err
			}
			if key == store.KeyEndpoint && value != "" && !strings.HasSuffix(value, client.EndpointSuffix) {
				return fmt.Errorf("%w: must end in %s", client.ErrInvalidEndpoint, client.EndpointSuffix)
			}
			if err := a.open(); err != nil {
				return err
			}
			return a.store.SetSetting(key, value)
		},
	})

	return cmd
}
