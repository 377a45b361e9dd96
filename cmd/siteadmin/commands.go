package main

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tendant/simple-site/pkg/simplesite"
	"github.com/tendant/simple-site/pkg/simplesite/scan"
)

// NewSeedCommand creates the seed command
func NewSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Write default content for missing keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := newService(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := svc.SeedDefaults(cmd.Context())
			if err != nil {
				return fmt.Errorf("seed failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Message)
			for _, key := range result.Written {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", key)
			}
			return nil
		},
	}
}

// NewContentCommand creates the content command group
func NewContentCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "content",
		Short: "Read and write content fields",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get [key]",
		Short: "Print one content value, or every key and value",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := newService(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			content := svc.GetAllContent(cmd.Context())
			if len(args) == 1 {
				value, ok := content[args[0]]
				if !ok {
					return fmt.Errorf("content key %q not found", args[0])
				}
				fmt.Fprintln(cmd.OutOrStdout(), value)
				return nil
			}

			keys := make([]string, 0, len(content))
			for k := range content {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tVALUE")
			for _, k := range keys {
				fmt.Fprintf(w, "%s\t%s\n", k, truncate(content[k], 60))
			}
			return w.Flush()
		},
	})

	var section, page string
	setCmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Write one content value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := newService(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			update := simplesite.ContentFieldUpdate{Value: args[1]}
			if section != "" {
				update.Section = &section
			}
			if page != "" {
				update.Page = &page
			}

			results := svc.UpdateContent(cmd.Context(), map[string]simplesite.ContentFieldUpdate{args[0]: update})
			if err := simplesite.FirstFailure(results); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved changes for '%s'.\n", args[0])
			return nil
		},
	}
	setCmd.Flags().StringVar(&section, "section", "", "section the key belongs to")
	setCmd.Flags().StringVar(&page, "page", "", "page the key belongs to")
	cmd.AddCommand(setCmd)

	return cmd
}

// NewOrderCommand creates the home-page section order commands
func NewOrderCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Show or change the home-page section order",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the sections the home page renders, in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := newService(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			home := svc.LoadHome(cmd.Context())
			for i, block := range home.Sections {
				fmt.Fprintf(cmd.OutOrStdout(), "%d. %s (%s)\n", i+1, block.ID, block.Theme)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <id,id,...>",
		Short: "Store a new section order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := newService(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			ids, err := svc.ReorderSections(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			parts := make([]string, len(ids))
			for i, id := range ids {
				parts[i] = string(id)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Section order saved: %s\n", strings.Join(parts, ","))
			return nil
		},
	})

	return cmd
}

// NewProjectsCommand creates the projects list command
func NewProjectsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := newService(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			projects, err := svc.ListProjects(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tPUBLISHED\tFEATURED\tORDER\tCREATED")
			for _, p := range projects {
				fmt.Fprintf(w, "%d\t%s\t%t\t%t\t%d\t%s\n",
					p.ID, truncate(p.Title, 40), p.Published, p.IsFeatured, p.SortOrder,
					p.CreatedAt.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}
	return cmd
}

// NewImagesCommand creates the image library list and audit commands
func NewImagesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "images",
		Short: "List the image library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := newService(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			images, err := svc.ListImages(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "URL\tSIZE\tTYPE\tUPDATED")
			for _, img := range images {
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", img.URL, img.Size, img.ContentType, img.UpdatedAt.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}

	var removeOrphans, dryRun bool
	auditCmd := &cobra.Command{
		Use:   "audit",
		Short: "Find unused images and content pointing at missing images",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := newService(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := scan.New(svc).Scan(cmd.Context(), scan.Options{
				RemoveOrphans: removeOrphans,
				DryRun:        dryRun,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Images: %d, referenced: %d, orphaned: %d\n", result.TotalImages, result.Referenced, len(result.Orphans))
			for _, key := range result.Orphans {
				fmt.Fprintf(out, "  orphan   %s\n", key)
			}
			keys := make([]string, 0, len(result.Dangling))
			for k := range result.Dangling {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(out, "  missing  %s -> %s\n", k, result.Dangling[k])
			}
			if len(result.Removed) > 0 {
				fmt.Fprintf(out, "Removed %d orphaned images.\n", len(result.Removed))
			}
			if len(result.FailedKeys) > 0 {
				return fmt.Errorf("failed to remove %d images", len(result.FailedKeys))
			}
			return nil
		},
	}
	auditCmd.Flags().BoolVar(&removeOrphans, "remove-orphans", false, "delete images nothing references")
	auditCmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what --remove-orphans would delete")
	cmd.AddCommand(auditCmd)

	return cmd
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-3]) + "..."
}
