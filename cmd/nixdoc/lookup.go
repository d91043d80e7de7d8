package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dshills/nixdoc/internal/lookup"
	"github.com/dshills/nixdoc/internal/parser"
	"github.com/dshills/nixdoc/internal/report"
	"github.com/dshills/nixdoc/pkg/types"
)

func newDocCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "doc <file> <line> [column]",
		Short: "Print the documentation of the lambda at a position",
		Long: `Print the documentation of the lambda whose first parameter starts at the
given line and column. The column may be omitted when the line holds a single
documented lambda. Nothing is printed when the lambda has no documentation.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos := types.Position{File: args[0]}

			line, err := strconv.Atoi(args[1])
			if err != nil || line < 1 {
				return fmt.Errorf("invalid line %q", args[1])
			}
			pos.Line = line

			if len(args) > 2 {
				column, err := strconv.Atoi(args[2])
				if err != nil || column < 1 {
					return fmt.Errorf("invalid column %q", args[2])
				}
				pos.Column = column
			}

			svc := lookup.NewService(parser.NewWithLogger(a.logger), 1)
			svc.SetLogger(a.logger)

			entry, found, err := svc.Doc(cmd.Context(), pos)
			if err != nil {
				return err
			}
			if !found {
				a.logger.Debug("no documentation", "pos", pos)
				return nil
			}

			out := cmd.OutOrStdout()
			_, err = fmt.Fprint(out, report.NewFormatter(out, a.cfg.ColorMode()).Render(entry))
			return err
		},
	}
}

func newPosCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "pos <file> <name>",
		Short: "Print the positions of the lambdas bound to a name",
		Long: `Print file:line:column for every lambda bound to name in file, documented or
not. The position is that of the lambda's first parameter and can be passed
to the doc command.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := lookup.NewService(parser.NewWithLogger(a.logger), 1)
			svc.SetLogger(a.logger)

			positions, err := svc.Positions(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}

			for _, p := range positions {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), p.String()); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
