package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ekra-ltd/reogrid-go/pkg/reogrid/formula"
	"github.com/ekra-ltd/reogrid-go/pkg/reogrid/formula/address"
	"github.com/ekra-ltd/reogrid-go/pkg/reogrid/output"
)

func newRefsCmd(g *globalFlags) *cobra.Command {
	var dialect string
	cmd := &cobra.Command{
		Use:   "refs [formula]",
		Short: "List the cell references of a formula",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tag, err := g.language()
			if err != nil {
				return err
			}

			var refs any
			switch dialect {
			case "a1":
				list := []address.A1Reference{}
				for ref, err := range address.NewA1Grammar(tag).Enumerate(args[0]) {
					if err != nil {
						return err
					}
					list = append(list, ref)
				}
				refs = list
			case "r1c1":
				list := []address.R1C1Reference{}
				for ref, err := range address.NewR1C1Grammar(tag).Enumerate(args[0]) {
					if err != nil {
						return err
					}
					list = append(list, ref)
				}
				refs = list
			default:
				return fmt.Errorf("invalid dialect: %s (must be a1 or r1c1)", dialect)
			}
			return output.Write(cmd.OutOrStdout(), refs, g.pretty)
		},
	}
	cmd.Flags().StringVar(&dialect, "dialect", "a1", "Reference notation: a1, r1c1")
	return cmd
}

// classification is the result of classifying one error literal.
type classification struct {
	Text string `json:"text"`
	formula.ErrorConstant
}

func newClassifyCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "classify [text...]",
		Short: "Classify texts as standard spreadsheet error values",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result := make([]classification, 0, len(args))
			for _, text := range args {
				result = append(result, classification{Text: text, ErrorConstant: formula.FromString(text)})
			}
			return output.Write(cmd.OutOrStdout(), result, g.pretty)
		},
	}
}
