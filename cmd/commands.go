package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/sdtheme/internal/preview"
	"github.com/oakwood-commons/sdtheme/pkg/diag"
	"github.com/oakwood-commons/sdtheme/pkg/tile"
	"github.com/oakwood-commons/sdtheme/pkg/tui"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print sdtheme version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), cliVersionString())
			return nil
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the themes on the card",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := newManager(cmd)
			if err != nil {
				return err
			}
			names, err := m.Themes()
			if err != nil {
				return err
			}
			if len(names) == 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "no themes under %s\n", m.Root())
				return nil
			}
			current := runSettings(cmd).Theme
			for _, name := range names {
				marker := " "
				if name == current {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, name)
			}
			return nil
		},
	}
}

func newInspectCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "inspect [theme]",
		Short: "Print the merged theme, layout and icon sources",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}
			m, err := newManager(cmd)
			if err != nil {
				return err
			}
			snap, err := activate(cmd, m, themeArg(cmd, args))
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output, newSnapshotView(snap))
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "output format: yaml|json|toml")
	cmd.ValidArgsFunction = completeThemes
	return cmd
}

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [theme]",
		Short: "Report every override the device would skip",
		Long:  "validate loads a theme and lists rejected and unknown entries. It fails only when the theme cannot be used at all; rejected entries fall back to defaults on the device too.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newManager(cmd)
			if err != nil {
				return err
			}
			snap, err := activate(cmd, m, themeArg(cmd, args))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "theme %s (%s)\n", snap.Name, snap.Theme.Name)
			for _, r := range []diag.Report{snap.Diagnostics.Theme, snap.Diagnostics.Layout} {
				fmt.Fprintf(out, "  %s\n", reportLine(r))
				for _, msg := range r.Messages() {
					fmt.Fprintf(out, "    rejected %s\n", msg)
				}
			}
			icons, glyphs := 0, 0
			for _, id := range tile.All() {
				if snap.IconFor(id).Builtin() {
					glyphs++
				} else {
					icons++
				}
			}
			fmt.Fprintf(out, "  icons: %d from files, %d built-in glyphs\n", icons, glyphs)
			return nil
		},
	}
	cmd.ValidArgsFunction = completeThemes
	return cmd
}

func reportLine(r diag.Report) string {
	switch {
	case r.Missing:
		return fmt.Sprintf("%s: not present, defaults apply", r.Source)
	case r.Truncated:
		return fmt.Sprintf("%s: %d applied, %d rejected, %d unknown (truncated at size limit)", r.Source, r.Applied, r.Failed, r.Unknown)
	}
	return fmt.Sprintf("%s: %d applied, %d rejected, %d unknown", r.Source, r.Applied, r.Failed, r.Unknown)
}

func newPreviewCmd() *cobra.Command {
	var iconsOut string
	cmd := &cobra.Command{
		Use:   "preview [theme]",
		Short: "Show the palette as color swatches",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newManager(cmd)
			if err != nil {
				return err
			}
			snap, err := activate(cmd, m, themeArg(cmd, args))
			if err != nil {
				return err
			}
			if err := preview.Render(cmd.OutOrStdout(), snap, preview.Options{NoColor: runSettings(cmd).NoColor}); err != nil {
				return err
			}
			if iconsOut == "" {
				return nil
			}
			written, err := preview.ExportIcons(hostFs, iconsOut, snap)
			for _, p := range written {
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", p)
			}
			return err
		},
	}
	cmd.Flags().StringVar(&iconsOut, "icons-out", "", "also write the fitted icons as PNG files into this directory")
	cmd.ValidArgsFunction = completeThemes
	return cmd
}

var errNoTerminal = errors.New("pick needs an interactive terminal")

func newPickCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pick",
		Short: "Choose a theme interactively and preview it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := newManager(cmd)
			if err != nil {
				return err
			}
			names, err := m.Themes()
			if err != nil {
				return err
			}
			if len(names) == 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "no themes under %s\n", m.Root())
				return nil
			}
			if !writesToTerminal(cmd) || !isTerminal(int(os.Stdin.Fd())) {
				return errNoTerminal
			}
			run := runSettings(cmd)
			chosen, err := tui.Run(cmd.Context(), m, names,
				tui.Options{NoColor: run.NoColor, Initial: run.Theme},
				cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if chosen != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "active theme: %s\n", chosen)
			}
			return nil
		},
	}
}

var errUnknownOutput = errors.New("unknown output format")

func validateOutput(output string) error {
	switch output {
	case "yaml", "json", "toml":
		return nil
	}
	return fmt.Errorf("%w %q (expected yaml, json or toml)", errUnknownOutput, output)
}
