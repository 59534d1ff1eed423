package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gnana997/previewtheme/pkg/registry"
	"github.com/gnana997/previewtheme/pkg/scopemap"
	"github.com/gnana997/previewtheme/pkg/theme"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <theme>",
	Short: "Show the highlight styles a theme produces",
	Long: "Resolve a theme by label or id, load its token rules and print the\n" +
		"highlight classes and styles it yields for the markdown preview.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		cfg, err := loadProjectConfig(flagConfig)
		if err != nil {
			return err
		}

		reg, err := registry.New(resolveExtensionsDirs(cfg), resolveBuiltinDir(cfg), logger)
		if err != nil {
			return err
		}

		name := args[0]
		loc, err := reg.Resolve(name)
		if err != nil {
			return err
		}

		rules, err := theme.NewLoader(logger).Load(loc.ThemePath)
		if err != nil && len(rules) == 0 {
			return fmt.Errorf("load theme %q: %w", name, err)
		}

		pool := "installed"
		if loc.Builtin {
			pool = "builtin"
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s  (%s)\n", name, pool)
		fmt.Fprintf(out, "  %s\n\n", loc.ThemePath)

		styles := scopemap.Map(rules, scopemap.MarkdownTable())
		if styles.Len() == 0 {
			fmt.Fprintln(out, "No token colors map onto the preview; the base rule alone applies.")
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
		fmt.Fprintf(w, "CLASS\tCOLOR\tFONT STYLE\n")
		for _, class := range styles.Classes() {
			st, _ := styles.Get(class)
			flags := st.FontStyle
			if flags == "" {
				flags = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", class, st.Color, flags)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
