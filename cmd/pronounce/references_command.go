package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"pronounce/internal/report"
)

type referenceView struct {
	Name     string `json:"name"`
	Title    string `json:"title,omitempty"`
	Level    string `json:"level,omitempty"`
	Language string `json:"language,omitempty"`
	Words    int    `json:"words"`
	Text     string `json:"text,omitempty"`
}

func newReferencesCommand(ctx *commandContext) *cobra.Command {
	refCmd := &cobra.Command{
		Use:     "references",
		Aliases: []string{"refs"},
		Short:   "Browse the reference prompt catalog",
	}
	refCmd.AddCommand(newReferencesListCommand(ctx))
	refCmd.AddCommand(newReferencesShowCommand(ctx))
	return refCmd
}

func newReferencesListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog references",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := ctx.catalog()
			if err != nil {
				return err
			}
			refs := catalog.List()
			if asJSON {
				views := make([]referenceView, len(refs))
				for i, ref := range refs {
					views[i] = referenceView{Name: ref.Name, Title: ref.Title, Level: ref.Level, Language: ref.Language, Words: ref.Words()}
				}
				return writeJSON(cmd, views)
			}
			if len(refs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No references in catalog")
				return nil
			}
			rows := make([][]string, len(refs))
			for i, ref := range refs {
				rows[i] = []string{ref.Name, ref.Title, ref.Level, ref.Language, strconv.Itoa(ref.Words())}
			}
			fmt.Fprintln(cmd.OutOrStdout(), report.Grid(
				[]string{"Name", "Title", "Level", "Language", "Words"},
				rows, 4,
			))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newReferencesShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show NAME",
		Short: "Print one reference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := ctx.catalog()
			if err != nil {
				return err
			}
			ref, err := catalog.Lookup(args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, referenceView{
					Name: ref.Name, Title: ref.Title, Level: ref.Level, Language: ref.Language,
					Words: ref.Words(), Text: ref.Text,
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Name:     %s\n", ref.Name)
			if ref.Title != "" {
				fmt.Fprintf(out, "Title:    %s\n", ref.Title)
			}
			if ref.Level != "" {
				fmt.Fprintf(out, "Level:    %s\n", ref.Level)
			}
			if ref.Language != "" {
				fmt.Fprintf(out, "Language: %s\n", ref.Language)
			}
			fmt.Fprintf(out, "Words:    %d\n\n", ref.Words())
			fmt.Fprintln(out, strings.TrimSpace(ref.Text))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}
