package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/namelens/handlecheck/internal/core"
)

var platformsCmd = &cobra.Command{
	Use:   "platforms",
	Short: "List social platforms and TLD presets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		renderPlatforms(cmd.OutOrStdout())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(platformsCmd)
}

func renderPlatforms(w io.Writer) {
	platforms := table.NewWriter()
	platforms.SetStyle(table.StyleRounded)
	platforms.SetTitle("Social platforms")
	platforms.AppendHeader(table.Row{"ID", "Name", "Profile URL"})
	for _, platform := range core.SocialPlatforms {
		platforms.AppendRow(table.Row{string(platform.ID), platform.Name, platform.URLTemplate})
	}

	presets := table.NewWriter()
	presets.SetStyle(table.StyleRounded)
	presets.SetTitle("TLD presets")
	presets.AppendHeader(table.Row{"Preset", "TLDs", "Description"})
	for _, preset := range core.BuiltInPresets {
		name := preset.Name
		if name == core.DefaultPreset {
			name += " (default)"
		}
		presets.AppendRow(table.Row{name, strings.Join(preset.TLDs, ", "), preset.Description})
	}

	fmt.Fprintln(w, platforms.Render())
	fmt.Fprintln(w)
	fmt.Fprintln(w, presets.Render())
}
