package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/foxzi/planry/internal/export"
	"github.com/foxzi/planry/internal/plan"
	"github.com/foxzi/planry/internal/session"
)

var (
	planFile       string
	checklistFmt   string
	checklistOut   string
	checklistStore bool
)

var checklistCmd = &cobra.Command{
	Use:   "checklist",
	Short: "Build the asset checklist of a plan file",
	Long: `Read a plan document (YAML or JSON) and print its production checklist:
emails per brand in week order, ad variations and supporting content.`,
	RunE: runChecklist,
}

var adsCmd = &cobra.Command{
	Use:   "ads",
	Short: "Show the ad variations a plan file requires",
	RunE:  runAds,
}

func init() {
	checklistCmd.Flags().StringVarP(&planFile, "file", "f", "", "plan document (.yaml, .yml or .json)")
	checklistCmd.Flags().StringVar(&checklistFmt, "format", "text", "output format (text, markdown, json, yaml)")
	checklistCmd.Flags().StringVarP(&checklistOut, "output", "o", "", "write to file instead of stdout")
	checklistCmd.Flags().BoolVar(&checklistStore, "archive", false, "also save the checklist to the archive")
	checklistCmd.MarkFlagRequired("file")

	adsCmd.Flags().StringVarP(&planFile, "file", "f", "", "plan document (.yaml, .yml or .json)")
	adsCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(checklistCmd, adsCmd)
}

func loadPlan(path string) (session.State, error) {
	doc, err := export.LoadFile(path)
	if err != nil {
		return session.State{}, err
	}
	st, err := doc.State()
	if err != nil {
		return session.State{}, fmt.Errorf("invalid plan %s: %w", path, err)
	}
	return st, nil
}

func runChecklist(cmd *cobra.Command, args []string) error {
	format, err := export.ParseFormat(checklistFmt)
	if err != nil {
		return err
	}

	st, err := loadPlan(planFile)
	if err != nil {
		return err
	}
	cl := plan.BuildChecklist(st.Campaign, st.Plan)

	var w io.Writer = os.Stdout
	if checklistOut != "" {
		f, err := os.Create(checklistOut)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if err := export.Render(w, cl, format); err != nil {
		return err
	}

	if orphans := plan.Orphans(st.Campaign, st.Plan); len(orphans) > 0 {
		fmt.Fprintf(os.Stderr, "warning: %d email(s) promote titles that are not in the campaign\n", len(orphans))
		for _, o := range orphans {
			fmt.Fprintf(os.Stderr, "  %s: %q\n", o.ID, o.Promotes)
		}
	}

	if checklistStore {
		archive, err := openArchive()
		if err != nil {
			return err
		}
		defer archive.Close()

		entry := &export.Entry{Checklist: cl}
		if err := archive.Save(context.Background(), entry); err != nil {
			return fmt.Errorf("failed to archive checklist: %w", err)
		}
		fmt.Fprintf(os.Stderr, "archived as %s\n", entry.ID)
	}

	return nil
}

func runAds(cmd *cobra.Command, args []string) error {
	st, err := loadPlan(planFile)
	if err != nil {
		return err
	}
	return export.RenderAds(os.Stdout, plan.PromotedItems(st.Campaign), plan.CalculateAds(st.Campaign))
}
