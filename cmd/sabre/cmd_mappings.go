package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dhamidi/sabre/mapping"
)

// mappingFlags selects and reads a mapping file.
type mappingFlags struct {
	format  string
	from    string
	to      string
	reverse bool
}

func (f *mappingFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.format, "format", "", "mapping format (auto, tiny, tsrg, enigma)")
	cmd.Flags().StringVar(&f.from, "from", "", "source namespace of tiny mappings (default first column)")
	cmd.Flags().StringVar(&f.to, "to", "", "target namespace of tiny mappings (default second column)")
	cmd.Flags().BoolVar(&f.reverse, "reverse", false, "apply the mappings from target to source")
}

func (a *app) readMappings(path string, f *mappingFlags) (*mapping.Table, error) {
	name := f.format
	if name == "" {
		name = a.cfg.Mappings.Format
	}
	format, err := mapping.ParseFormat(name)
	if err != nil {
		return nil, err
	}
	from, to := f.from, f.to
	if from == "" {
		from = a.cfg.Mappings.From
	}
	if to == "" {
		to = a.cfg.Mappings.To
	}
	table, err := mapping.ReadFile(path, format, from, to)
	if err != nil {
		return nil, fmt.Errorf("read mappings: %w", err)
	}
	if f.reverse {
		if table, err = table.Inverse(); err != nil {
			return nil, fmt.Errorf("reverse mappings: %w", err)
		}
	}
	a.log.Infof("read %d mapping entries from %s", table.Len(), path)
	return table, nil
}

func newMappingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mappings",
		Short: "Convert and combine mapping files",
	}
	cmd.AddCommand(newMappingsConvertCmd(a))
	cmd.AddCommand(newMappingsRebaseCmd(a))
	return cmd
}

func writeTiny(path string, table *mapping.Table, from, to string) error {
	if path == "" || path == "-" {
		if err := mapping.WriteTiny(os.Stdout, table, from, to); err != nil {
			return fmt.Errorf("write mappings: %w", err)
		}
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := mapping.WriteTiny(f, table, from, to); err != nil {
		f.Close()
		return fmt.Errorf("write mappings: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write mappings: %w", err)
	}
	return nil
}

func newMappingsConvertCmd(a *app) *cobra.Command {
	var flags mappingFlags
	var output, fromName, toName string

	cmd := &cobra.Command{
		Use:   "convert <mappings>",
		Short: "Rewrite mappings in any supported format as tiny v1",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := a.readMappings(args[0], &flags)
			if err != nil {
				return err
			}
			return writeTiny(output, table, fromName, toName)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&fromName, "from-name", "source", "namespace name of the first output column")
	cmd.Flags().StringVar(&toName, "to-name", "target", "namespace name of the second output column")
	return cmd
}

func newMappingsRebaseCmd(a *app) *cobra.Command {
	var flags mappingFlags
	var output string

	cmd := &cobra.Command{
		Use:   "rebase <x-to-a> <x-to-b>",
		Short: "Combine two mapping files with a shared source into mappings from a to b",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			first, err := a.readMappings(args[0], &flags)
			if err != nil {
				return err
			}
			second, err := a.readMappings(args[1], &flags)
			if err != nil {
				return err
			}
			table, err := mapping.Rebase(first, second)
			if err != nil {
				return fmt.Errorf("rebase: %w", err)
			}
			return writeTiny(output, table, "a", "b")
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}
