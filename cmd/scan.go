package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"nefconv/internal/config"
	"nefconv/internal/imaging"
	"nefconv/internal/processor"
	"nefconv/internal/tui"
)

var scanExts []string

var scanCmd = &cobra.Command{
	Use:   "scan <input_dir>",
	Short: "Report camera metadata and embedded previews without converting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := args[0]
		names, err := processor.ListSourceFiles(dir, scanExts)
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Fprintln(os.Stdout, tui.DimStyle.Render("no matching files"))
			return nil
		}

		for i, name := range names {
			if i > 0 {
				fmt.Fprintln(os.Stdout)
			}
			fmt.Fprintf(os.Stdout, "%s\n", tui.FileStyle.Render(name))

			report, err := imaging.Inspect(filepath.Join(dir, name))
			if err != nil {
				fmt.Fprintf(os.Stdout, "  %s %s\n", tui.BulletStyle.Render("-"), tui.ErrorStyle.Render(err.Error()))
				continue
			}
			for _, field := range scanFields(report) {
				value := tui.ValueStyle.Render(field.value)
				if field.value == "" {
					value = tui.DimStyle.Render("none")
				}
				fmt.Fprintf(os.Stdout, "  %s %s %s\n",
					tui.BulletStyle.Render("-"),
					tui.KeyStyle.Render(field.label+":"),
					value,
				)
			}
			if report.MetadataErr != nil {
				fmt.Fprintf(os.Stdout, "  %s %s\n", tui.BulletStyle.Render("-"),
					tui.WarnStyle.Render("metadata: "+report.MetadataErr.Error()))
			}
		}
		return nil
	},
}

type scanField struct {
	label string
	value string
}

func scanFields(r imaging.Report) []scanField {
	preview := ""
	if r.PreviewWidth > 0 {
		preview = fmt.Sprintf("%dx%d", r.PreviewWidth, r.PreviewHeight)
	}
	location := ""
	if r.Location != nil {
		location = fmt.Sprintf("%.5f, %.5f", r.Location.Latitude, r.Location.Longitude)
	}
	return []scanField{
		{"Format", r.Kind.String()},
		{"Camera", joinNonEmpty(r.Make, r.Model)},
		{"Taken", r.Timestamp},
		{"Orientation", r.Orientation},
		{"Serial", r.Serial},
		{"Location", location},
		{"Embedded preview", preview},
	}
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " " + b
	}
}

func init() {
	scanCmd.Flags().StringSliceVarP(&scanExts, "ext", "e", config.Default().Extensions, "source file extensions")

	rootCmd.AddCommand(scanCmd)
}
