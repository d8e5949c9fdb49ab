package main

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/iho/fintrack/internal/adapter/http/dto"
)

func accountsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Account operations",
	}

	var asJSON bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient(opts)
			if err != nil {
				return err
			}

			var accounts []dto.AccountResponse
			if err := client.do(cmd.Context(), http.MethodGet, "/api/accounts", nil, &accounts); err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), accounts)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tTYPE\tBALANCE\tCURRENCY")
			for _, a := range accounts {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", a.ID, truncate(a.Name, 24), a.Type, a.Balance.StringFixed(2), a.Currency)
			}
			return tw.Flush()
		},
	}
	listCmd.Flags().BoolVar(&asJSON, "json", false, "Print raw JSON")

	cmd.AddCommand(listCmd)
	return cmd
}

func transactionsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "Transaction operations",
	}

	var (
		accountID string
		page      int
		limit     int
		txType    string
		category  string
		search    string
		from      string
		to        string
	)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient(opts)
			if err != nil {
				return err
			}

			path := "/api/transactions"
			if accountID != "" {
				path = "/api/accounts/" + url.PathEscape(accountID) + "/transactions"
			}

			q := url.Values{}
			q.Set("page", strconv.Itoa(page))
			q.Set("limit", strconv.Itoa(limit))
			for key, val := range map[string]string{"type": txType, "category": category, "search": search, "from": from, "to": to} {
				if val != "" {
					q.Set(key, val)
				}
			}

			var result dto.TransactionPageResponse
			if err := client.do(cmd.Context(), http.MethodGet, path, q, &result); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
	listCmd.Flags().StringVar(&accountID, "account", "", "Only list transactions of this account")
	listCmd.Flags().IntVar(&page, "page", 1, "Page number")
	listCmd.Flags().IntVar(&limit, "limit", 20, "Page size")
	listCmd.Flags().StringVar(&txType, "type", "", "INCOME or EXPENSE")
	listCmd.Flags().StringVar(&category, "category", "", "Exact category")
	listCmd.Flags().StringVar(&search, "search", "", "Search descriptions")
	listCmd.Flags().StringVar(&from, "from", "", "Earliest date (YYYY-MM-DD or RFC 3339)")
	listCmd.Flags().StringVar(&to, "to", "", "Latest date (YYYY-MM-DD or RFC 3339)")

	cmd.AddCommand(listCmd)
	return cmd
}

func statsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stats [account-id]",
		Short: "Show account statistics, or the monthly summary without an account",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient(opts)
			if err != nil {
				return err
			}

			if len(args) == 0 {
				var summary dto.SummaryResponse
				if err := client.do(cmd.Context(), http.MethodGet, "/api/summary", nil, &summary); err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), summary)
			}

			var stats dto.StatisticsResponse
			if err := client.do(cmd.Context(), http.MethodGet, "/api/accounts/"+url.PathEscape(args[0])+"/statistics", nil, &stats); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), stats)
		},
	}
}
