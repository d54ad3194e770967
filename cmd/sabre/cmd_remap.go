package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/sabre/classfile"
	"github.com/dhamidi/sabre/format"
	"github.com/dhamidi/sabre/hierarchy"
	"github.com/dhamidi/sabre/jar"
	"github.com/dhamidi/sabre/remap"
	"github.com/dhamidi/sabre/scheduler"
)

// remapFlags are shared by the commands that build a remap plan.
type remapFlags struct {
	classpath []string
	workers   int
	strict    bool
	failFast  bool
}

func (f *remapFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.classpath, "classpath", nil, "library jars or directories used for resolution but not written")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "number of classes remapped in parallel (default GOMAXPROCS)")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "fail classes with unresolved references")
	cmd.Flags().BoolVar(&f.failFast, "fail-fast", false, "stop after the first failed class")
}

func (a *app) newScheduler(cmd *cobra.Command, f *remapFlags, opts ...remap.Option) *scheduler.Scheduler {
	workers, strict, failFast := f.workers, f.strict, f.failFast
	if !cmd.Flags().Changed("workers") {
		workers = a.cfg.Workers
	}
	if !cmd.Flags().Changed("strict") {
		strict = a.cfg.Strict
	}
	if !cmd.Flags().Changed("fail-fast") {
		failFast = a.cfg.FailFast
	}
	policy := scheduler.BestEffort
	if failFast {
		policy = scheduler.FailFast
	}
	sopts := []scheduler.Option{
		scheduler.WithWorkers(workers),
		scheduler.WithStrict(strict),
		scheduler.WithPolicy(policy),
		scheduler.WithLogger(commonlog.GetLogger("sabre.scheduler")),
		scheduler.WithRemapOptions(opts...),
	}
	if len(a.cfg.LibraryPrefixes) > 0 {
		sopts = append(sopts, scheduler.WithHierarchyOptions(hierarchy.WithLibraryPrefixes(a.cfg.LibraryPrefixes...)))
	}
	return scheduler.New(sopts...)
}

func (a *app) libraries(f *remapFlags) ([]*classfile.ClassFile, error) {
	if len(f.classpath) == 0 {
		return nil, nil
	}
	libs, err := jar.OpenAll(f.classpath...)
	if err != nil {
		return nil, fmt.Errorf("read classpath: %w", err)
	}
	a.log.Infof("read %d library classes", len(libs.Classes))
	return libs.Classes, nil
}

func newRemapCmd(a *app) *cobra.Command {
	var mappings mappingFlags
	var flags remapFlags
	var mappingsPath, output string
	var rebuildSourceNames, skipResources bool

	cmd := &cobra.Command{
		Use:   "remap <input>...",
		Short: "Rename classes and members of jars, class directories or class files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := a.readMappings(mappingsPath, &mappings)
			if err != nil {
				return err
			}
			input, err := jar.OpenAll(args...)
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			a.log.Infof("read %d classes and %d resources", len(input.Classes), len(input.Resources))
			libs, err := a.libraries(&flags)
			if err != nil {
				return err
			}

			s := a.newScheduler(cmd, &flags, remap.WithSourceNames(rebuildSourceNames))
			report, runErr := s.Run(cmd.Context(), input.Classes, table, scheduler.WithLibraries(libs...))
			if report == nil {
				return runErr
			}
			report.Sort()
			if err := format.WriteDiagnostics(os.Stderr, report.Warnings); err != nil {
				return err
			}
			if err := format.WriteDiagnostics(os.Stderr, report.Diagnostics()); err != nil {
				return err
			}
			if runErr != nil {
				return runErr
			}

			classes := make([]*classfile.ClassFile, 0, len(report.Done)+len(report.Failed))
			for _, res := range report.Done {
				classes = append(classes, res.Class)
			}
			for _, res := range report.Failed {
				if res.Class != nil {
					classes = append(classes, res.Class)
				}
			}
			var resources []jar.Resource
			if !skipResources {
				resources = jar.MapResources(input.Resources, table)
			}
			if err := jar.Create(output, classes, resources); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			a.log.Infof("wrote %d classes to %s", len(classes), output)

			if len(report.Failed) > 0 {
				return fmt.Errorf("%d classes failed", len(report.Failed))
			}
			return nil
		},
	}
	mappings.register(cmd)
	flags.register(cmd)
	cmd.Flags().StringVarP(&mappingsPath, "mappings", "m", "", "mapping file, or directory of enigma mappings")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output jar, or directory unless it ends in .jar or .zip")
	cmd.Flags().BoolVar(&rebuildSourceNames, "rebuild-source-names", false, "derive SourceFile attributes from the new class names")
	cmd.Flags().BoolVar(&skipResources, "skip-resources", false, "leave non-class entries out of the output")
	cmd.MarkFlagRequired("mappings")
	cmd.MarkFlagRequired("output")
	return cmd
}
