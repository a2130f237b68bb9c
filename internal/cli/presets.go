package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// presetsCommand creates the "presets" command.
func (c *CLI) presetsCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List named regions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			presets, err := c.loadPresets(cfg, file)
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, presetTable(presets))
			printNextStep("Compute one", "escapetime compute --preset "+presets[0].Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "presets", "", "HCL file with extra region presets")
	return cmd
}
