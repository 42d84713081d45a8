// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/internscout/internal/search"
)

var showCmd = &cobra.Command{
	Use:   "show <file>",
	Short: "Print the results of a saved search",
	Long: `Show reads a query file written by "search --save" and prints its companies
in the same format as search. With --json each record is printed exactly as the
backend sent it.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().Bool("json", false, "print each company as a JSON line")

	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")

	qf, err := search.ReadQueryFile(args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "%s (%s): %d companies, saved %s\n",
		qf.Query.City, industryLabel(qf.Query.Industry), qf.Summary.Total,
		qf.Summary.Timestamp.Local().Format("2006-01-02 15:04"))

	emit := printer(cmd.OutOrStdout(), asJSON)
	for _, rec := range qf.Companies() {
		emit(rec)
	}
	return nil
}

func industryLabel(industry string) string {
	if industry == "" {
		return "all industries"
	}
	return industry
}
