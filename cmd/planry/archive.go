package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/foxzi/planry/internal/export"
)

var (
	archiveListLimit  int
	archiveListSearch string
	archiveShowFormat string
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Archived checklist commands",
}

var archiveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived checklists",
	RunE:  runArchiveList,
}

var archiveShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show an archived checklist",
	Args:  cobra.ExactArgs(1),
	RunE:  runArchiveShow,
}

var archiveDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an archived checklist",
	Args:  cobra.ExactArgs(1),
	RunE:  runArchiveDelete,
}

func init() {
	archiveListCmd.Flags().IntVar(&archiveListLimit, "limit", 50, "Maximum number of entries to show")
	archiveListCmd.Flags().StringVar(&archiveListSearch, "search", "", "Filter by campaign name")
	archiveShowCmd.Flags().StringVar(&archiveShowFormat, "format", "text", "output format (text, markdown, json, yaml)")

	archiveCmd.AddCommand(archiveListCmd, archiveShowCmd, archiveDeleteCmd)
	rootCmd.AddCommand(archiveCmd)
}

func openArchive() (*export.Archive, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	archive, err := export.OpenArchive(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	return archive, nil
}

func runArchiveList(cmd *cobra.Command, args []string) error {
	archive, err := openArchive()
	if err != nil {
		return err
	}
	defer archive.Close()

	entries, err := archive.List(context.Background(), export.ListFilter{
		Limit:  archiveListLimit,
		Search: archiveListSearch,
	})
	if err != nil {
		return fmt.Errorf("failed to list archive: %w", err)
	}

	if len(entries) == 0 {
		fmt.Println("Archive is empty")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCAMPAIGN\tWEEKS\tEMAILS\tADS\tCONTENT\tCREATED")
	for _, e := range entries {
		name := e.Campaign
		if name == "" {
			name = "-"
		}
		t := e.Checklist.Totals
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			e.ID, name, e.Checklist.DurationWeeks, t.Emails, t.Ads, t.Content,
			e.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	return w.Flush()
}

func runArchiveShow(cmd *cobra.Command, args []string) error {
	format, err := export.ParseFormat(archiveShowFormat)
	if err != nil {
		return err
	}

	archive, err := openArchive()
	if err != nil {
		return err
	}
	defer archive.Close()

	entry, err := archive.Get(context.Background(), args[0])
	if err != nil {
		return err
	}

	return export.Render(os.Stdout, entry.Checklist, format)
}

func runArchiveDelete(cmd *cobra.Command, args []string) error {
	archive, err := openArchive()
	if err != nil {
		return err
	}
	defer archive.Close()

	if err := archive.Delete(context.Background(), args[0]); err != nil {
		return err
	}

	fmt.Printf("Deleted %s\n", args[0])
	return nil
}
