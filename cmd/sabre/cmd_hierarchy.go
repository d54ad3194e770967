package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhamidi/sabre/format"
	"github.com/dhamidi/sabre/hierarchy"
	"github.com/dhamidi/sabre/jar"
	"github.com/dhamidi/sabre/mapping"
	"github.com/dhamidi/sabre/remap"
	"github.com/dhamidi/sabre/scheduler"
)

// parseReference splits owner.name:descriptor.
func parseReference(s string) (owner, name, desc string, kind hierarchy.MemberKind, err error) {
	ref, desc, ok := strings.Cut(s, ":")
	i := strings.LastIndexByte(ref, '.')
	if !ok || i <= 0 || i == len(ref)-1 || desc == "" {
		return "", "", "", 0, fmt.Errorf("invalid reference %q (expected owner.name:descriptor)", s)
	}
	kind = hierarchy.FieldMember
	if strings.HasPrefix(desc, "(") {
		kind = hierarchy.MethodMember
	}
	return ref[:i], ref[i+1:], desc, kind, nil
}

func describe(r *remap.Remapper, id hierarchy.ClassID) *format.Class {
	idx := r.Index()
	c := &format.Class{
		ClassDescriptor: *idx.Class(id),
		Partial:         idx.Partial(id),
		Opaque:          idx.Opaque(id),
		Renamed:         make(map[int]string),
	}
	for i := range c.Members {
		if to := r.MemberName(hierarchy.MemberRef{Class: id, Index: i}); to != c.Members[i].Name {
			c.Renamed[i] = to
		}
	}
	return c
}

func newHierarchyCmd(a *app) *cobra.Command {
	var mappings mappingFlags
	var flags remapFlags
	var mappingsPath, outputFormat string
	var classNames, references []string

	cmd := &cobra.Command{
		Use:   "hierarchy <input>...",
		Short: "Show classes as the remapper sees them and resolve member references",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			enc, err := format.New(outputFormat, os.Stdout)
			if err != nil {
				return err
			}
			table := mapping.Empty()
			if mappingsPath != "" {
				if table, err = a.readMappings(mappingsPath, &mappings); err != nil {
					return err
				}
			}
			input, err := jar.OpenAll(args...)
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			libs, err := a.libraries(&flags)
			if err != nil {
				return err
			}
			r, err := a.newScheduler(cmd, &flags).Plan(input.Classes, table, scheduler.WithLibraries(libs...))
			if err != nil {
				return err
			}
			idx := r.Index()

			if len(classNames) == 0 && len(references) == 0 {
				for _, cf := range input.Classes {
					classNames = append(classNames, cf.ClassName())
				}
			}
			for _, name := range classNames {
				id, ok := idx.Lookup(name)
				if !ok {
					return fmt.Errorf("class %s is not in the input", name)
				}
				if err := enc.Encode(describe(r, id)); err != nil {
					return err
				}
			}

			for _, s := range references {
				owner, name, desc, kind, err := parseReference(s)
				if err != nil {
					return err
				}
				res, err := idx.DeclaringClassOf(owner, name, desc, kind)
				switch {
				case err != nil:
					fmt.Fprintf(os.Stdout, "%s\tunresolved\t%v\n", s, err)
				case res.External:
					fmt.Fprintf(os.Stdout, "%s\texternal\n", s)
				default:
					m := idx.Member(res.Ref)
					fmt.Fprintf(os.Stdout, "%s\t%s.%s:%s\t-> %s\n", s, idx.Name(res.Ref.Class), m.Name, m.Descriptor, r.MemberName(res.Ref))
				}
			}
			return format.WriteDiagnostics(os.Stderr, r.Warnings())
		},
	}
	mappings.register(cmd)
	cmd.Flags().StringSliceVar(&flags.classpath, "classpath", nil, "library jars or directories used for resolution")
	cmd.Flags().StringVarP(&mappingsPath, "mappings", "m", "", "show the names planned by these mappings")
	cmd.Flags().StringVarP(&outputFormat, "output-format", "f", "line", "output format (line, json)")
	cmd.Flags().StringSliceVar(&classNames, "class", nil, "classes to show (default all input classes)")
	cmd.Flags().StringSliceVar(&references, "resolve", nil, "references to resolve, as owner.name:descriptor")
	return cmd
}
