package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tingly-dev/tingly-porter/internal/dataformat"
)

// FormatsCommand lists the formats each form offers
func FormatsCommand(load configLoader) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "formats",
		Short: "List import and export formats",
		Long: `Display the formats offered by the import, export and bulk action forms,
in choice order, with their extension and large dataset export support.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if all {
				fmt.Fprintln(out, TitleStyle.Render("Built-in formats"))
				fmt.Fprintln(out, formatTable(dataformat.All(), nil))
				return nil
			}

			cfg, err := load()
			if err != nil {
				return err
			}
			formats, err := cfg.ResolveFormats()
			if err != nil {
				return err
			}

			sections := []struct {
				title   string
				formats []dataformat.Format
			}{
				{"Import", formats.Import},
				{"Export", formats.Export},
				{"Bulk export action", formats.Action},
			}
			for i, section := range sections {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintln(out, TitleStyle.Render(section.title))
				if len(section.formats) == 0 {
					fmt.Fprintln(out, MutedStyle.Render("(none)"))
					continue
				}
				streaming := formats.Streaming
				if section.title == "Import" {
					streaming = nil
				}
				fmt.Fprintln(out, formatTable(section.formats, streaming))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "list every built-in format instead of the configured ones")
	return cmd
}

// formatTable renders formats with their ordinal; a nil streaming list shows capability
func formatTable(formats, streaming []dataformat.Format) string {
	rows := make([][]string, 0, len(formats))
	for i, f := range formats {
		var large bool
		if streaming == nil {
			large = dataformat.IsStreamingCapable(f)
		} else {
			large = dataformat.Contains(streaming, f)
		}
		mark := MutedStyle.Render("no")
		if large {
			mark = SuccessStyle.Render("yes")
		}
		rows = append(rows, []string{strconv.Itoa(i), f.Name(), f.Title(), "." + strings.TrimPrefix(f.Extension(), "."), mark})
	}
	return renderTable([]string{"#", "NAME", "TITLE", "EXT", "LARGE EXPORT"}, rows)
}
